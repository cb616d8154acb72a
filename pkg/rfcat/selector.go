package rfcat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DeviceSelector identifies one dongle among those connected
// Supported formats:
//   - ""           : Use first available device
//   - "serial"     : Match by serial number (e.g., "009a")
//   - "bus:addr"   : Match by USB bus and address (e.g., "1:10")
//   - "#N"         : Use Nth device, 0-indexed (e.g., "#0", "#1")
type DeviceSelector string

// selectorKind is the parsed form of a DeviceSelector
type selectorKind int

const (
	selectFirst selectorKind = iota
	selectIndex
	selectBusAddr
	selectSerial
)

type parsedSelector struct {
	kind   selectorKind
	index  int
	bus    int
	addr   int
	serial string
}

func (s DeviceSelector) parse() (parsedSelector, error) {
	sel := string(s)

	if sel == "" {
		return parsedSelector{kind: selectFirst}, nil
	}

	if strings.HasPrefix(sel, "#") {
		index, err := strconv.Atoi(sel[1:])
		if err != nil || index < 0 {
			return parsedSelector{}, fmt.Errorf("invalid device index: %s", sel)
		}
		return parsedSelector{kind: selectIndex, index: index}, nil
	}

	if busStr, addrStr, ok := strings.Cut(sel, ":"); ok {
		bus, err := strconv.Atoi(busStr)
		if err != nil {
			return parsedSelector{}, fmt.Errorf("invalid bus number: %s", busStr)
		}
		addr, err := strconv.Atoi(addrStr)
		if err != nil {
			return parsedSelector{}, fmt.Errorf("invalid address number: %s", addrStr)
		}
		return parsedSelector{kind: selectBusAddr, bus: bus, addr: addr}, nil
	}

	return parsedSelector{kind: selectSerial, serial: sel}, nil
}

// pick returns the index of the matching device, or an error
func (p parsedSelector) pick(devices []*Device) (int, error) {
	if len(devices) == 0 {
		return -1, fmt.Errorf("no RfCat dongles found")
	}

	switch p.kind {
	case selectFirst:
		return 0, nil
	case selectIndex:
		if p.index >= len(devices) {
			return -1, fmt.Errorf("device index %d out of range (found %d devices)", p.index, len(devices))
		}
		return p.index, nil
	case selectBusAddr:
		for i, d := range devices {
			if d.Bus == p.bus && d.Address == p.addr {
				return i, nil
			}
		}
		return -1, fmt.Errorf("no dongle found at bus %d address %d", p.bus, p.addr)
	default:
		match := -1
		for i, d := range devices {
			if d.Serial != p.serial {
				continue
			}
			if match >= 0 {
				return -1, fmt.Errorf("multiple devices found with serial %s; use bus:addr format (e.g., 1:10) or index format (e.g., #0)", p.serial)
			}
			match = i
		}
		if match < 0 {
			return -1, fmt.Errorf("no dongle found with serial %s", p.serial)
		}
		return match, nil
	}
}

// SelectDevice opens the dongle matching the selector and closes the rest
func SelectDevice(context *gousb.Context, selector DeviceSelector) (*Device, error) {
	parsed, err := selector.parse()
	if err != nil {
		return nil, err
	}

	devices, err := FindAllDevices(context)
	if err != nil {
		return nil, err
	}

	idx, err := parsed.pick(devices)
	for i, d := range devices {
		if i != idx {
			d.Close()
		}
	}
	if err != nil {
		return nil, err
	}
	return devices[idx], nil
}

// DeviceFlagUsage returns usage text for the -d flag
func DeviceFlagUsage() string {
	return `Device selector. Formats:
    ""        - Use first available device
    "serial"  - Match by serial number (e.g., "009a")
    "bus:addr"- Match by USB location (e.g., "1:10")
    "#N"      - Use Nth device, 0-indexed (e.g., "#0", "#1")`
}
