package mac

import "fmt"

// FrameType is the frame type field of the frame control
type FrameType uint8

const (
	FrameTypeBeacon       FrameType = 0
	FrameTypeData         FrameType = 1
	FrameTypeAck          FrameType = 2
	FrameTypeMACCommand   FrameType = 3
	FrameTypeReserved     FrameType = 4
	FrameTypeMultipurpose FrameType = 5
	FrameTypeFragment     FrameType = 6
	FrameTypeExtended     FrameType = 7
)

// String returns a human-readable name for the frame type
func (t FrameType) String() string {
	names := map[FrameType]string{
		FrameTypeBeacon:       "beacon",
		FrameTypeData:         "data",
		FrameTypeAck:          "ack",
		FrameTypeMACCommand:   "command",
		FrameTypeReserved:     "reserved",
		FrameTypeMultipurpose: "multipurpose",
		FrameTypeFragment:     "fragment",
		FrameTypeExtended:     "extended",
	}
	if name, ok := names[t]; ok {
		return name
	}
	return "unknown"
}

// FrameVersion is the frame version field of the frame control
type FrameVersion uint8

const (
	FrameVersion2003 FrameVersion = 0
	FrameVersion2006 FrameVersion = 1
	FrameVersion2015 FrameVersion = 2
)

// String returns the standard revision the version refers to
func (v FrameVersion) String() string {
	switch v {
	case FrameVersion2003:
		return "802.15.4-2003"
	case FrameVersion2006:
		return "802.15.4-2006"
	case FrameVersion2015:
		return "802.15.4-2015"
	default:
		return fmt.Sprintf("version(%d)", uint8(v))
	}
}

// ParseFrameVersion maps a standard year (2003, 2006, 2015) to a FrameVersion
func ParseFrameVersion(year int) (FrameVersion, error) {
	switch year {
	case 2003:
		return FrameVersion2003, nil
	case 2006:
		return FrameVersion2006, nil
	case 2015:
		return FrameVersion2015, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, year)
	}
}

// FooterMode selects whether a byte slice carries the FCS footer
type FooterMode uint8

const (
	// FooterNone means the radio already checked and stripped the FCS
	FooterNone FooterMode = iota
	// FooterExplicit means the last two bytes are the FCS
	FooterExplicit
)

// Header is the MAC header of a frame
type Header struct {
	FrameType     FrameType
	Security      bool
	FramePending  bool
	AckRequest    bool
	PANIDCompress bool
	SeqNoSuppress bool
	IEPresent     bool
	Version       FrameVersion
	Sequence      uint8

	// nil when the addressing mode is none
	Destination *Address
	Source      *Address
}

// Frame is a decoded or to-be-encoded MAC frame
type Frame struct {
	Header  Header
	Content Content
	Payload []byte

	// FCS is set by Decode when the footer was present
	FCS uint16
}
