package scan

import "github.com/herlein/activescan/pkg/mac"

// BuildBeaconRequest returns a beacon request frame: a MAC command addressed
// to the broadcast PAN and short address, with no source address and every
// optional header flag cleared.
func BuildBeaconRequest(seq uint8, version mac.FrameVersion) *mac.Frame {
	dst := mac.BroadcastAddress()
	return &mac.Frame{
		Header: mac.Header{
			FrameType:   mac.FrameTypeMACCommand,
			Version:     version,
			Sequence:    seq,
			Destination: &dst,
		},
		Content: mac.Command{ID: mac.CommandBeaconRequest},
	}
}
