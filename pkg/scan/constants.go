// Package scan implements an IEEE 802.15.4 active scan: it hops across a
// channel set, broadcasts a beacon request on each channel and reports the
// coordinators whose beacons it hears.
package scan

import (
	"time"

	"github.com/herlein/activescan/pkg/mac"
)

// Default scanning parameters
const (
	// DefaultHopInterval is the period of the channel-advance timer
	DefaultHopInterval = 2 * time.Second

	// DefaultQuiescentDelay is the pause between loop iterations
	DefaultQuiescentDelay = 100 * time.Microsecond

	// DefaultFrameVersion is the frame version of outgoing beacon requests
	DefaultFrameVersion = mac.FrameVersion2003

	// DefaultNetworkExpiry is how long a network stays in the tracker
	// without a new beacon
	DefaultNetworkExpiry = 5 * time.Minute
)

// Limits
const (
	// MaxHopInterval bounds the hop interval accepted by Validate
	MaxHopInterval = time.Hour

	// MaxQuiescentDelay bounds the quiescent delay accepted by Validate
	MaxQuiescentDelay = time.Second
)
