// Package rfcat talks to CC25xx dongles running RfCat-protocol firmware
// over the USB EP5 command channel.
package rfcat

import "time"

// USB Device Identifiers
const (
	VendorID = 0x1D50

	ProductIDDonsDongle    = 0x6048 // CC2511 dongle
	ProductIDChronosDongle = 0x6047
	ProductIDSRFStick      = 0xECC1
	ProductIDYardStickOne  = 0x605B // sub-GHz only, accepted for bring-up tests
)

// SupportedProductIDs lists every product ID FindAllDevices will open
var SupportedProductIDs = []uint16{
	ProductIDDonsDongle,
	ProductIDChronosDongle,
	ProductIDSRFStick,
	ProductIDYardStickOne,
}

// USB Endpoint Configuration
const (
	EP5Number        = 5
	EP5MaxPacketSize = 64
	EP5OutBufferSize = 516
	ResponseMarker   = 0x40 // '@' character marks start of response
	headerLen        = 4    // app + cmd + length(2 LE)
	responseHeader   = 5    // marker + header
)

// USB Timeouts
const (
	USBDefaultTimeout = 1000 * time.Millisecond
	USBTXWaitTimeout  = 10000 * time.Millisecond
	usbReadSlice      = 100 * time.Millisecond
)

// Application IDs for EP5 protocol
const (
	AppNIC    = 0x42 // Radio NIC operations
	AppDebug  = 0xFE // Debug output
	AppSystem = 0xFF // System/administrative commands
)

// System Commands (APP_SYSTEM = 0xFF)
const (
	SysCmdPeek      = 0x80 // Read memory
	SysCmdPoke      = 0x81 // Write memory
	SysCmdPing      = 0x82 // Echo test
	SysCmdBuildType = 0x86 // Get firmware build info
	SysCmdRFMode    = 0x88 // Set radio mode
	SysCmdPartNum   = 0x8E // Get chip part number
)

// NIC Commands (APP_NIC = 0x42)
const (
	NICRecv       = 0x01 // Receive RF data
	NICXmit       = 0x02 // Transmit RF data
	NICSetAmpMode = 0x0A // Set amplifier mode
	NICGetAmpMode = 0x0B // Get amplifier mode
)

// RF mode values for SysCmdRFMode (RFST strobe values)
const (
	RFModeRX   = 0x02
	RFModeTX   = 0x03
	RFModeIDLE = 0x04
)

// Chip Part Numbers
const (
	PartNumCC1110 = 0x01
	PartNumCC1111 = 0x11
	PartNumCC2510 = 0x81
	PartNumCC2511 = 0x91
)

// PartName returns the chip name for a part number
func PartName(partNum uint8) string {
	switch partNum {
	case PartNumCC1110:
		return "CC1110"
	case PartNumCC1111:
		return "CC1111"
	case PartNumCC2510:
		return "CC2510"
	case PartNumCC2511:
		return "CC2511"
	default:
		return "Unknown"
	}
}

// Is24GHz reports whether the part number is a 2.4 GHz CC25xx radio
func Is24GHz(partNum uint8) bool {
	return partNum == PartNumCC2510 || partNum == PartNumCC2511
}

// Amplifier Mode values
const (
	AmpModeOff = 0x00
	AmpModeOn  = 0x01
)

// RF Constants
const (
	RFMaxTXBlock = 255
)
