package scan

import (
	"fmt"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
)

// ScanConfig defines runtime scanning parameters
type ScanConfig struct {
	// Channel rotation, visited in order
	Channels []radio.Channel

	// Loop timing
	HopInterval    time.Duration // period of the channel-advance timer
	QuiescentDelay time.Duration // pause after every iteration

	// Frame version of outgoing beacon requests
	FrameVersion mac.FrameVersion

	// Network tracking; zero disables expiry
	NetworkExpiry time.Duration

	// Time source (optional, defaults to SystemClock)
	Clock Clock

	// Callbacks (optional)
	OnNetworkDiscovered func(n *Network)
	OnNetworkExpired    func(n *Network)

	// Debug callback (optional)
	DebugLog func(format string, args ...interface{})
}

// DefaultConfig returns a ScanConfig with default values
func DefaultConfig() *ScanConfig {
	channels := make([]radio.Channel, len(radio.DefaultChannels))
	copy(channels, radio.DefaultChannels)

	return &ScanConfig{
		Channels:       channels,
		HopInterval:    DefaultHopInterval,
		QuiescentDelay: DefaultQuiescentDelay,
		FrameVersion:   DefaultFrameVersion,
		NetworkExpiry:  DefaultNetworkExpiry,
	}
}

// Validate checks the configuration for errors
func (c *ScanConfig) Validate() error {
	if len(c.Channels) == 0 {
		return ErrNoChannels
	}

	for _, ch := range c.Channels {
		if !ch.Valid() {
			return fmt.Errorf("%w: %d", radio.ErrInvalidChannel, ch)
		}
	}

	if c.HopInterval < time.Millisecond || c.HopInterval > MaxHopInterval {
		return ErrInvalidHopInterval
	}

	if c.QuiescentDelay < 0 || c.QuiescentDelay > MaxQuiescentDelay {
		return ErrInvalidQuiescentDelay
	}

	if c.FrameVersion > mac.FrameVersion2015 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, mac.ErrUnsupportedVersion)
	}

	if c.NetworkExpiry < 0 {
		return fmt.Errorf("%w: negative network expiry", ErrInvalidConfig)
	}

	return nil
}
