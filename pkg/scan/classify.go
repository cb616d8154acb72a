package scan

import (
	"fmt"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
)

// Observation is one beacon heard from a coordinator or router
type Observation struct {
	Channel     radio.Channel
	PAN         mac.PANID
	Source      mac.Address
	Coordinator bool // PAN coordinator bit of the superframe specification
	PermitJoin  bool // association permit bit of the superframe specification
	Sequence    uint8
	Time        time.Time
}

// String formats the observation the way the console log prints it. The
// role and join columns are always present and empty when the bit is clear.
func (o Observation) String() string {
	coordinator, join := "", ""
	if o.Coordinator {
		coordinator = "Coordinator"
	}
	if o.PermitJoin {
		join = "Join"
	}
	return fmt.Sprintf("CH %d BEACON %s %s %s", o.Channel, o.Source, coordinator, join)
}

// Classify extracts an Observation from a decoded frame. It reports false for
// anything but a beacon, and for beacons with no source address, which carry
// nothing to identify the sender. Channel and Time are left for the caller.
func Classify(f *mac.Frame) (Observation, bool) {
	switch c := f.Content.(type) {
	case *mac.Beacon:
		src := f.Header.Source
		if src == nil {
			return Observation{}, false
		}
		return Observation{
			PAN:         src.PAN,
			Source:      *src,
			Coordinator: c.Superframe.PANCoordinator,
			PermitJoin:  c.Superframe.AssociationPermit,
			Sequence:    f.Header.Sequence,
		}, true
	case mac.Command, mac.Data, mac.Other:
		return Observation{}, false
	default:
		return Observation{}, false
	}
}
