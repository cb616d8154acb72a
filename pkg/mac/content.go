package mac

import "fmt"

// Content is the frame-type specific part of a frame between the header and
// the payload. The set of implementations is closed: *Beacon, Command, Data
// and Other.
type Content interface {
	frameType() FrameType
}

// CommandID identifies a MAC command
type CommandID uint8

const (
	CommandAssociationRequest         CommandID = 0x01
	CommandAssociationResponse        CommandID = 0x02
	CommandDisassociationNotification CommandID = 0x03
	CommandDataRequest                CommandID = 0x04
	CommandPANIDConflictNotification  CommandID = 0x05
	CommandOrphanNotification         CommandID = 0x06
	CommandBeaconRequest              CommandID = 0x07
	CommandCoordinatorRealignment     CommandID = 0x08
	CommandGTSRequest                 CommandID = 0x09
)

// String returns the command name
func (c CommandID) String() string {
	names := map[CommandID]string{
		CommandAssociationRequest:         "association-request",
		CommandAssociationResponse:        "association-response",
		CommandDisassociationNotification: "disassociation-notification",
		CommandDataRequest:                "data-request",
		CommandPANIDConflictNotification:  "panid-conflict-notification",
		CommandOrphanNotification:         "orphan-notification",
		CommandBeaconRequest:              "beacon-request",
		CommandCoordinatorRealignment:     "coordinator-realignment",
		CommandGTSRequest:                 "gts-request",
	}
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("command(0x%02x)", uint8(c))
}

// Command is the content of a MAC command frame. Command parameters, if any,
// are carried in Frame.Payload.
type Command struct {
	ID CommandID
}

func (Command) frameType() FrameType { return FrameTypeMACCommand }

// SuperframeSpec is the superframe specification field of a beacon
type SuperframeSpec struct {
	BeaconOrder          uint8
	SuperframeOrder      uint8
	FinalCAPSlot         uint8
	BatteryLifeExtension bool
	PANCoordinator       bool
	AssociationPermit    bool
}

// GTSDescriptor describes one guaranteed time slot allocation
type GTSDescriptor struct {
	Short     ShortAddress
	StartSlot uint8
	Length    uint8
	Receive   bool // direction: true when the device receives in this slot
}

// Beacon is the content of a beacon frame. The beacon payload (for example a
// Zigbee network descriptor) is carried in Frame.Payload.
type Beacon struct {
	Superframe      SuperframeSpec
	GTSPermit       bool
	GTS             []GTSDescriptor
	PendingShort    []ShortAddress
	PendingExtended []ExtendedAddress

	// Enhanced marks a 2015 enhanced beacon, whose fields live in IEs
	Enhanced bool
}

func (*Beacon) frameType() FrameType { return FrameTypeBeacon }

// Data is the content of a data frame
type Data struct{}

func (Data) frameType() FrameType { return FrameTypeData }

// Other is the content of any frame type this package does not interpret
type Other struct {
	Type FrameType
}

func (o Other) frameType() FrameType { return o.Type }
