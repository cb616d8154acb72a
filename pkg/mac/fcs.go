package mac

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

// The 802.15.4 FCS is the ITU-T CRC-16 with reflected input and output and a
// zero initial value, known as CRC-16/KERMIT.
var fcsTable = crc16.MakeTable(crc16.CRC16_KERMIT)

// FCS computes the frame check sequence over a frame body
func FCS(body []byte) uint16 {
	return crc16.Checksum(body, fcsTable)
}

// AppendFCS appends the little-endian FCS of body to body
func AppendFCS(body []byte) []byte {
	return binary.LittleEndian.AppendUint16(body, FCS(body))
}

// CheckFCS splits a PSDU into body and footer and verifies the footer.
// It returns the body, the received FCS and the FCS computed over the body.
func CheckFCS(psdu []byte) (body []byte, received, computed uint16, ok bool) {
	if len(psdu) < FCSSize {
		return nil, 0, 0, false
	}
	body = psdu[:len(psdu)-FCSSize]
	received = binary.LittleEndian.Uint16(psdu[len(psdu)-FCSSize:])
	computed = FCS(body)
	return body, received, computed, received == computed
}
