// Package mac models IEEE 802.15.4 MAC frames and converts them to and from
// their on-air byte representation.
package mac

// Frame sizing
const (
	// MaxPSDUSize is aMaxPHYPacketSize: the largest PHY payload, FCS included.
	MaxPSDUSize = 127

	// FCSSize is the length of the frame check sequence footer.
	FCSSize = 2

	// MaxFrameSize is the largest frame body the encoder will produce (no FCS).
	MaxFrameSize = MaxPSDUSize - FCSSize
)

// Frame control field layout
const (
	fcFrameTypeMask     = 0x0007
	fcSecurityEnabled   = 1 << 3
	fcFramePending      = 1 << 4
	fcAckRequest        = 1 << 5
	fcPANIDCompress     = 1 << 6
	fcSeqNoSuppress     = 1 << 8
	fcIEPresent         = 1 << 9
	fcDstAddrModeShift  = 10
	fcFrameVersionShift = 12
	fcSrcAddrModeShift  = 14
)

// Superframe specification layout
const (
	sfBeaconOrderMask     = 0x000F
	sfSuperframeOrderPos  = 4
	sfFinalCAPSlotPos     = 8
	sfBatteryLifeExt      = 1 << 12
	sfPANCoordinator      = 1 << 14
	sfAssociationPermit   = 1 << 15
	gtsDescriptorCountMsk = 0x07
	gtsPermit             = 0x80
	pendingShortMask      = 0x07
	pendingExtendedShift  = 4
)

// Information element terminators
const (
	ieHeaderTermination1 = 0x7E // header IEs end, payload IEs follow
	ieHeaderTermination2 = 0x7F // header IEs end, payload follows
	iePayloadTermination = 0x0F
)

// Well-known addresses
const (
	BroadcastPANID PANID        = 0xFFFF
	BroadcastShort ShortAddress = 0xFFFF
)
