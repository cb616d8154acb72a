package scan

import "github.com/herlein/activescan/pkg/radio"

// ChannelScheduler walks a fixed channel list round-robin
type ChannelScheduler struct {
	channels []radio.Channel
	index    int
}

// NewChannelScheduler creates a scheduler positioned on the first channel.
// An empty list falls back to radio.DefaultChannels.
func NewChannelScheduler(channels []radio.Channel) *ChannelScheduler {
	if len(channels) == 0 {
		channels = radio.DefaultChannels
	}
	list := make([]radio.Channel, len(channels))
	copy(list, channels)
	return &ChannelScheduler{channels: list}
}

// Current returns the active channel
func (s *ChannelScheduler) Current() radio.Channel {
	return s.channels[s.index]
}

// Index returns the position of the active channel in the list
func (s *ChannelScheduler) Index() int {
	return s.index
}

// Len returns the number of channels in the rotation
func (s *ChannelScheduler) Len() int {
	return len(s.channels)
}

// Advance moves to the next channel, wrapping to the start of the list
func (s *ChannelScheduler) Advance() {
	s.index++
	if s.index == len(s.channels) {
		s.index = 0
	}
}
