package mac

import "fmt"

// PANID identifies a personal area network
type PANID uint16

// ShortAddress is a 16-bit device address assigned by a coordinator
type ShortAddress uint16

// ExtendedAddress is a device's 64-bit IEEE address
type ExtendedAddress uint64

// AddressMode is the addressing mode field of the frame control
type AddressMode uint8

const (
	AddressModeNone     AddressMode = 0
	AddressModeShort    AddressMode = 2
	AddressModeExtended AddressMode = 3
)

// String returns the addressing mode name
func (m AddressMode) String() string {
	switch m {
	case AddressModeNone:
		return "none"
	case AddressModeShort:
		return "short"
	case AddressModeExtended:
		return "extended"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(m))
	}
}

// Address is a PAN identifier paired with either a short or an extended
// device address. Mode selects which of Short and Extended is meaningful.
// An absent address is represented by a nil *Address in the Header.
type Address struct {
	Mode     AddressMode
	PAN      PANID
	Short    ShortAddress
	Extended ExtendedAddress
}

// ShortAddr returns a short-mode address
func ShortAddr(pan PANID, addr ShortAddress) Address {
	return Address{Mode: AddressModeShort, PAN: pan, Short: addr}
}

// ExtendedAddr returns an extended-mode address
func ExtendedAddr(pan PANID, addr ExtendedAddress) Address {
	return Address{Mode: AddressModeExtended, PAN: pan, Extended: addr}
}

// BroadcastAddress returns the short-mode broadcast address on the broadcast PAN.
// It names no specific device.
func BroadcastAddress() Address {
	return ShortAddr(BroadcastPANID, BroadcastShort)
}

// IsBroadcast reports whether a is the short broadcast address
func (a Address) IsBroadcast() bool {
	return a.Mode == AddressModeShort && a.Short == BroadcastShort
}

// String formats the address as pan:addr in hex
func (a Address) String() string {
	switch a.Mode {
	case AddressModeShort:
		return fmt.Sprintf("%04x:%04x", uint16(a.PAN), uint16(a.Short))
	case AddressModeExtended:
		return fmt.Sprintf("%04x:%016x", uint16(a.PAN), uint64(a.Extended))
	default:
		return "none"
	}
}
