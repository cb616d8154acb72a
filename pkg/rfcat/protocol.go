package rfcat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	errNoMarker   = errors.New("no response marker found")
	errIncomplete = errors.New("incomplete response")
	errMismatch   = errors.New("response mismatch")
)

// encodeCommand builds an EP5 OUT packet
// Protocol: app(1) + cmd(1) + length(2 LE) + payload
func encodeCommand(app, cmd uint8, payload []byte) []byte {
	packet := make([]byte, headerLen+len(payload))
	packet[0] = app
	packet[1] = cmd
	binary.LittleEndian.PutUint16(packet[2:4], uint16(len(payload)))
	copy(packet[headerLen:], payload)
	return packet
}

// parseResponse extracts the first complete response from buf.
// Response format: '@'(1) + app(1) + cmd(1) + length(2 LE) + payload
//
// It returns the bytes still unconsumed. On errMismatch the mismatching
// response is consumed so the caller can look for the next one; on
// errIncomplete or errNoMarker buf is returned unchanged (minus any
// garbage before the marker).
func parseResponse(buf []byte, expectedApp, expectedCmd uint8) ([]byte, []byte, error) {
	markerIdx := bytes.IndexByte(buf, ResponseMarker)
	if markerIdx == -1 {
		return nil, buf[:0], errNoMarker
	}

	data := buf[markerIdx:]
	if len(data) < responseHeader {
		return nil, data, errIncomplete
	}

	app := data[1]
	cmd := data[2]
	length := binary.LittleEndian.Uint16(data[3:5])

	totalLen := responseHeader + int(length)
	if len(data) < totalLen {
		return nil, data, errIncomplete
	}

	if app != expectedApp || cmd != expectedCmd {
		return nil, data[totalLen:], fmt.Errorf("%w: got app=0x%02X cmd=0x%02X, expected app=0x%02X cmd=0x%02X",
			errMismatch, app, cmd, expectedApp, expectedCmd)
	}

	payload := make([]byte, length)
	copy(payload, data[responseHeader:totalLen])
	return payload, data[totalLen:], nil
}

// trimCString cuts a firmware string at its null terminator
func trimCString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
