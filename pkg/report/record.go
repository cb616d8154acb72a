// Package report delivers scan events to the console, a rotating JSON-lines
// file, an MQTT broker and websocket subscribers.
package report

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/herlein/activescan/pkg/scan"
)

// Record is the serialized form of a scan.Event
type Record struct {
	Kind        string    `json:"kind"`
	Time        time.Time `json:"time"`
	Channel     uint8     `json:"channel"`
	PAN         string    `json:"pan,omitempty"`
	Source      string    `json:"source,omitempty"`
	AddressMode string    `json:"address_mode,omitempty"`
	Coordinator bool      `json:"coordinator,omitempty"`
	PermitJoin  bool      `json:"permit_join,omitempty"`
	Sequence    *uint8    `json:"sequence,omitempty"`
	Raw         string    `json:"raw,omitempty"`
	CRC         string    `json:"crc,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// NewRecord flattens an event into a Record
func NewRecord(ev scan.Event) Record {
	rec := Record{
		Kind:    ev.Kind.String(),
		Time:    ev.Time.UTC(),
		Channel: uint8(ev.Channel),
	}

	switch ev.Kind {
	case scan.EventBeacon:
		if obs := ev.Observation; obs != nil {
			seq := obs.Sequence
			rec.PAN = fmt.Sprintf("%04x", uint16(obs.PAN))
			rec.Source = obs.Source.String()
			rec.AddressMode = obs.Source.Mode.String()
			rec.Coordinator = obs.Coordinator
			rec.PermitJoin = obs.PermitJoin
			rec.Sequence = &seq
		}
	case scan.EventRequestSent, scan.EventTransmitFault:
		seq := ev.Sequence
		rec.Sequence = &seq
	case scan.EventCRCFault:
		rec.CRC = fmt.Sprintf("0x%04x", ev.CRC)
	case scan.EventDecodeError:
		rec.Raw = hex.EncodeToString(ev.Raw)
	}

	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}
	return rec
}
