package rfcat

import (
	"context"
	"encoding/binary"
	"fmt"
)

// RFXmit transmits one RF block of at most RFMaxTXBlock bytes
func (d *Device) RFXmit(ctx context.Context, data []byte) error {
	if len(data) > RFMaxTXBlock {
		return fmt.Errorf("transmit block of %d bytes exceeds maximum %d", len(data), RFMaxTXBlock)
	}

	// NIC_XMIT payload: data_len(2 LE) + repeat(2 LE) + offset(2 LE) + data
	payload := make([]byte, 6+len(data))
	binary.LittleEndian.PutUint16(payload[0:2], uint16(len(data)))
	copy(payload[6:], data)

	ctx, cancel := context.WithTimeout(ctx, USBTXWaitTimeout)
	defer cancel()

	response, err := d.SendContext(ctx, AppNIC, NICXmit, payload)
	if err != nil {
		return fmt.Errorf("transmit failed: %w", err)
	}

	// Firmware versions answer 1, '0' or 0 on success
	if len(response) > 0 {
		code := response[0]
		if code != 1 && code != '0' && code != 0 {
			return fmt.Errorf("transmit error: device returned 0x%02X", code)
		}
	}

	return nil
}

// RFRecv waits for the next received RF block until ctx is done
func (d *Device) RFRecv(ctx context.Context) ([]byte, error) {
	return d.RecvContext(ctx, AppNIC, NICRecv)
}

// SetRFMode asks the firmware to enter RX, TX or IDLE
func (d *Device) SetRFMode(mode uint8) error {
	_, err := d.Send(AppSystem, SysCmdRFMode, []byte{mode}, USBDefaultTimeout)
	if err != nil {
		return fmt.Errorf("failed to set RF mode 0x%02X: %w", mode, err)
	}
	return nil
}

// SetModeRX puts the radio into receive mode via the firmware
func (d *Device) SetModeRX() error {
	return d.SetRFMode(RFModeRX)
}

// SetModeIDLE puts the radio into idle mode via the firmware
func (d *Device) SetModeIDLE() error {
	return d.SetRFMode(RFModeIDLE)
}

// SetAmpMode enables or disables the front-end amplifier where fitted
func (d *Device) SetAmpMode(mode uint8) error {
	_, err := d.Send(AppNIC, NICSetAmpMode, []byte{mode}, USBDefaultTimeout)
	if err != nil {
		return fmt.Errorf("failed to set amplifier mode: %w", err)
	}
	return nil
}

// GetAmpMode returns the current amplifier mode (0=bypassed, 1=enabled)
func (d *Device) GetAmpMode() (uint8, error) {
	response, err := d.Send(AppNIC, NICGetAmpMode, nil, USBDefaultTimeout)
	if err != nil {
		return 0, fmt.Errorf("failed to get amplifier mode: %w", err)
	}
	if len(response) < 1 {
		return 0, fmt.Errorf("empty amplifier mode response")
	}
	return response[0], nil
}
