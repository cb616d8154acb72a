package registers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrFIFOFault is returned when the radio stops in a FIFO overflow or
// underflow state while being waited on
var ErrFIFOFault = errors.New("radio FIFO fault")

// Memory is the XDATA peek/poke access a dongle provides
type Memory interface {
	PeekByte(address uint16) (uint8, error)
	Poke(address uint16, data []byte) error
}

// Strobe sends a radio strobe command
func Strobe(m Memory, command uint8) error {
	return m.Poke(RegRFST, []byte{command})
}

// GetRadioState reads the current radio state
func GetRadioState(m Memory) (RadioState, error) {
	state, err := m.PeekByte(RegMARCSTATE)
	if err != nil {
		return 0, fmt.Errorf("failed to read radio state: %w", err)
	}
	return RadioState(state & 0x1F), nil // MARCSTATE is only 5 bits
}

// WaitForState polls MARCSTATE until the radio reaches state or ctx is done.
// A FIFO fault state ends the wait early since only SIDLE leaves it.
func WaitForState(ctx context.Context, m Memory, state RadioState) error {
	for {
		current, err := GetRadioState(m)
		if err != nil {
			return err
		}
		if current == state {
			return nil
		}
		if current.IsFault() {
			return fmt.Errorf("waiting for %s: %w: %s", state, ErrFIFOFault, current)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s (last %s): %w", state, current, ctx.Err())
		case <-time.After(time.Millisecond):
		}
	}
}

// FrequencyWord converts a carrier frequency to the 24-bit FREQ value
// FREQ = freq_hz * 2^16 / f_xosc
func FrequencyWord(freqHz, crystalHz uint32) uint32 {
	return uint32((uint64(freqHz) << 16) / uint64(crystalHz))
}

// FrequencyFromWord converts a 24-bit FREQ value back to Hz
func FrequencyFromWord(word, crystalHz uint32) uint32 {
	return uint32((uint64(word) * uint64(crystalHz)) >> 16)
}

// SetFrequency writes FREQ2..FREQ0 in one poke. The radio must be idle.
func SetFrequency(m Memory, freqHz, crystalHz uint32) error {
	word := FrequencyWord(freqHz, crystalHz)
	data := []byte{
		uint8((word >> 16) & 0xFF),
		uint8((word >> 8) & 0xFF),
		uint8(word & 0xFF),
	}
	if err := m.Poke(RegFREQ2, data); err != nil {
		return fmt.Errorf("failed to set frequency %d Hz: %w", freqHz, err)
	}
	return nil
}

// GetFrequency reads FREQ2..FREQ0 and returns the carrier in Hz
func GetFrequency(m Memory, crystalHz uint32) (uint32, error) {
	var word uint32
	for _, reg := range []uint16{RegFREQ2, RegFREQ1, RegFREQ0} {
		v, err := m.PeekByte(reg)
		if err != nil {
			return 0, fmt.Errorf("failed to read 0x%04X: %w", reg, err)
		}
		word = word<<8 | uint32(v)
	}
	return FrequencyFromWord(word, crystalHz), nil
}

// LinkStatus is the per-packet status the radio latches after a receive
type LinkStatus struct {
	RSSI  uint8
	LQI   uint8
	CRCOk bool
}

// RSSIDBm converts the raw RSSI register to dBm. The register is signed in
// 0.5 dB steps; the offset is 71 dB at 250 kBaud on the CC2511.
func (s LinkStatus) RSSIDBm() float32 {
	return float32(int8(s.RSSI))/2.0 - 71.0
}

// ReadLinkStatus reads RSSI and LQI/CRC_OK
func ReadLinkStatus(m Memory) (LinkStatus, error) {
	rssi, err := m.PeekByte(RegRSSI)
	if err != nil {
		return LinkStatus{}, fmt.Errorf("failed to read RSSI: %w", err)
	}
	lqi, err := m.PeekByte(RegLQI)
	if err != nil {
		return LinkStatus{}, fmt.Errorf("failed to read LQI: %w", err)
	}
	return LinkStatus{
		RSSI:  rssi,
		LQI:   lqi & 0x7F, // Lower 7 bits are LQI
		CRCOk: lqi&0x80 != 0,
	}, nil
}
