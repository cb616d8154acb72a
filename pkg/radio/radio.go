// Package radio defines the transceiver contract used by the scanner and the
// 2.4 GHz channel plan it scans.
package radio

import (
	"context"
	"fmt"
)

// Radio is an IEEE 802.15.4 transceiver.
//
// Receive blocks until a frame arrives or ctx is done. A receive abandoned
// through ctx must leave the device ready for the next SetChannel, Receive or
// Transmit call. Frames handed to Receive callers have already passed the FCS
// check and have the FCS stripped; a frame that fails the check is reported as
// a *CRCError. Transmit takes a frame body and appends the FCS itself.
//
// Implementations are not safe for concurrent use; the caller serializes calls.
type Radio interface {
	SetChannel(ch Channel) error
	Receive(ctx context.Context, buf []byte) (int, error)
	Transmit(ctx context.Context, frame []byte) error
}

// CRCError reports a received frame whose FCS did not match
type CRCError struct {
	// CRC is the value computed over the received bytes
	CRC uint16
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("radio: crc mismatch (computed 0x%04x)", e.CRC)
}
