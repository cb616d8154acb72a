package radio

import (
	"fmt"
	"strconv"
	"strings"
)

// Channel is a 2.4 GHz O-QPSK channel number (11-26)
type Channel uint8

// Channel range for the 2450 MHz band
const (
	MinChannel Channel = 11
	MaxChannel Channel = 26

	// ChannelSpacingMHz is the distance between adjacent channel centers
	ChannelSpacingMHz = 5

	baseFrequencyMHz = 2405
)

// DefaultChannels is every 2.4 GHz channel in ascending order
var DefaultChannels = []Channel{11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26}

// Valid reports whether c is in the 2.4 GHz channel range
func (c Channel) Valid() bool {
	return c >= MinChannel && c <= MaxChannel
}

// FrequencyMHz returns the channel center frequency in MHz
func (c Channel) FrequencyMHz() uint32 {
	return baseFrequencyMHz + ChannelSpacingMHz*(uint32(c)-uint32(MinChannel))
}

// Frequency returns the channel center frequency in Hz
func (c Channel) Frequency() uint32 {
	return c.FrequencyMHz() * 1000000
}

func (c Channel) String() string {
	return strconv.Itoa(int(c))
}

// ParseChannels parses a comma-separated channel list such as "11,15,20-26"
func ParseChannels(s string) ([]Channel, error) {
	var out []Channel
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		first, err := parseChannel(lo)
		if err != nil {
			return nil, err
		}
		last := first
		if isRange {
			if last, err = parseChannel(hi); err != nil {
				return nil, err
			}
			if last < first {
				return nil, fmt.Errorf("%w: range %s", ErrInvalidChannel, part)
			}
		}
		for ch := first; ch <= last; ch++ {
			out = append(out, ch)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoChannels
	}
	return out, nil
}

func parseChannel(s string) (Channel, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChannel, s)
	}
	ch := Channel(n)
	if n < 0 || n > 255 || !ch.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidChannel, n)
	}
	return ch, nil
}
