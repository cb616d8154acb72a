package mac

import (
	"encoding/binary"
	"fmt"
)

// Decode parses a MAC frame.
//
// With FooterExplicit the last two bytes are checked as the FCS and excluded
// from the frame. Header and payload information elements are skipped, and
// any bytes after the fixed beacon fields become the payload, so frames with
// fields this package does not model still decode.
func Decode(data []byte, footer FooterMode) (*Frame, error) {
	f := &Frame{}

	if footer == FooterExplicit {
		body, received, computed, ok := CheckFCS(data)
		if body == nil {
			return nil, fmt.Errorf("%w: %d bytes, no room for FCS", ErrTruncated, len(data))
		}
		if !ok {
			return nil, fmt.Errorf("%w: received 0x%04x, computed 0x%04x", ErrBadFCS, received, computed)
		}
		data = body
		f.FCS = received
	}

	r := &reader{buf: data}

	fc, err := r.u16()
	if err != nil {
		return nil, err
	}

	h := &f.Header
	h.FrameType = FrameType(fc & fcFrameTypeMask)

	// Frame types 4-7 use other frame control layouts; keep them opaque.
	if h.FrameType > FrameTypeMACCommand {
		f.Content = Other{Type: h.FrameType}
		f.Payload = r.rest()
		return f, nil
	}

	h.Security = fc&fcSecurityEnabled != 0
	h.FramePending = fc&fcFramePending != 0
	h.AckRequest = fc&fcAckRequest != 0
	h.PANIDCompress = fc&fcPANIDCompress != 0
	h.SeqNoSuppress = fc&fcSeqNoSuppress != 0
	h.IEPresent = fc&fcIEPresent != 0
	h.Version = FrameVersion((fc >> fcFrameVersionShift) & 0x03)

	dstMode := AddressMode((fc >> fcDstAddrModeShift) & 0x03)
	srcMode := AddressMode((fc >> fcSrcAddrModeShift) & 0x03)

	if h.Version > FrameVersion2015 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if dstMode == 1 || srcMode == 1 {
		return nil, ErrReservedAddressMode
	}

	if !(h.SeqNoSuppress && h.Version == FrameVersion2015) {
		if h.Sequence, err = r.u8(); err != nil {
			return nil, err
		}
	}

	dstPAN, srcPAN := panIDPresence(h.Version, dstMode, srcMode, h.PANIDCompress)

	if dstMode != AddressModeNone {
		addr, err := r.address(dstMode, dstPAN, 0)
		if err != nil {
			return nil, err
		}
		h.Destination = &addr
	}

	if srcMode != AddressModeNone {
		var inherited PANID
		if h.Destination != nil {
			inherited = h.Destination.PAN
		}
		addr, err := r.address(srcMode, srcPAN, inherited)
		if err != nil {
			return nil, err
		}
		h.Source = &addr
	}

	if h.Security {
		return nil, ErrSecurityUnsupported
	}

	if h.IEPresent {
		if err := r.skipIEs(); err != nil {
			return nil, err
		}
	}

	switch h.FrameType {
	case FrameTypeBeacon:
		b, err := r.beacon(h.Version)
		if err != nil {
			return nil, err
		}
		f.Content = b
	case FrameTypeMACCommand:
		id, err := r.u8()
		if err != nil {
			return nil, err
		}
		f.Content = Command{ID: CommandID(id)}
	case FrameTypeData:
		f.Content = Data{}
	default:
		f.Content = Other{Type: h.FrameType}
	}

	f.Payload = r.rest()
	return f, nil
}

// Encode writes f into buf and returns the number of bytes written. With
// FooterExplicit the FCS is appended. Secured frames and frames with IEs are
// not supported.
func Encode(f *Frame, buf []byte, footer FooterMode) (int, error) {
	h := &f.Header

	if f.Content != nil && f.Content.frameType() != h.FrameType {
		return 0, fmt.Errorf("%w: header %s, content %s", ErrContentMismatch, h.FrameType, f.Content.frameType())
	}
	if h.FrameType > FrameTypeMACCommand {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFrameType, h.FrameType)
	}
	if h.Security {
		return 0, ErrSecurityUnsupported
	}
	if h.IEPresent {
		return 0, fmt.Errorf("%w: IE encoding", ErrUnsupportedFrameType)
	}
	if h.Version > FrameVersion2015 {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	dstMode, srcMode := AddressModeNone, AddressModeNone
	if h.Destination != nil {
		dstMode = h.Destination.Mode
	}
	if h.Source != nil {
		srcMode = h.Source.Mode
	}

	fc := uint16(h.FrameType) |
		flag(h.FramePending, fcFramePending) |
		flag(h.AckRequest, fcAckRequest) |
		flag(h.PANIDCompress, fcPANIDCompress) |
		flag(h.SeqNoSuppress, fcSeqNoSuppress) |
		uint16(dstMode)<<fcDstAddrModeShift |
		uint16(h.Version)<<fcFrameVersionShift |
		uint16(srcMode)<<fcSrcAddrModeShift

	w := &writer{buf: buf}
	w.u16(fc)
	if !(h.SeqNoSuppress && h.Version == FrameVersion2015) {
		w.u8(h.Sequence)
	}

	dstPAN, srcPAN := panIDPresence(h.Version, dstMode, srcMode, h.PANIDCompress)
	if h.Destination != nil {
		w.address(*h.Destination, dstPAN)
	}
	if h.Source != nil {
		w.address(*h.Source, srcPAN)
	}

	switch c := f.Content.(type) {
	case *Beacon:
		if h.Version != FrameVersion2015 {
			w.beacon(c)
		}
	case Command:
		w.u8(uint8(c.ID))
	case Data, Other, nil:
	}

	w.bytes(f.Payload)

	if w.off > MaxFrameSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrFrameTooLong, w.off)
	}

	if footer == FooterExplicit {
		w.u16(FCS(buf[:min(w.off, len(buf))]))
	}

	if w.short {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, w.off, len(buf))
	}
	return w.off, nil
}

// panIDPresence reports whether the destination and source PAN identifier
// fields are present on the air for the given addressing combination.
func panIDPresence(v FrameVersion, dst, src AddressMode, compress bool) (dstPAN, srcPAN bool) {
	if v != FrameVersion2015 {
		dstPAN = dst != AddressModeNone
		srcPAN = src != AddressModeNone && !(compress && dst != AddressModeNone)
		return dstPAN, srcPAN
	}

	// 802.15.4-2015 table 7-2
	switch {
	case dst == AddressModeNone && src == AddressModeNone:
		return compress, false
	case src == AddressModeNone:
		return !compress, false
	case dst == AddressModeNone:
		return false, !compress
	case dst == AddressModeExtended && src == AddressModeExtended:
		return !compress, false
	default:
		return true, !compress
	}
}

func flag(set bool, bit uint16) uint16 {
	if set {
		return bit
	}
	return 0
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) need(n int) error {
	if r.off+n > len(r.buf) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, len(r.buf)-r.off)
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *reader) rest() []byte {
	out := make([]byte, len(r.buf)-r.off)
	copy(out, r.buf[r.off:])
	r.off = len(r.buf)
	return out
}

func (r *reader) address(mode AddressMode, hasPAN bool, inherited PANID) (Address, error) {
	addr := Address{Mode: mode, PAN: inherited}
	if hasPAN {
		pan, err := r.u16()
		if err != nil {
			return addr, err
		}
		addr.PAN = PANID(pan)
	}
	switch mode {
	case AddressModeShort:
		v, err := r.u16()
		if err != nil {
			return addr, err
		}
		addr.Short = ShortAddress(v)
	case AddressModeExtended:
		v, err := r.u64()
		if err != nil {
			return addr, err
		}
		addr.Extended = ExtendedAddress(v)
	}
	return addr, nil
}

// skipIEs walks the header IE list and, when announced by a HT1 terminator,
// the payload IE list.
func (r *reader) skipIEs() error {
	payloadIEs := false
	for len(r.buf)-r.off >= 2 {
		desc, _ := r.u16()
		if desc&0x8000 != 0 {
			return fmt.Errorf("%w: payload IE in header list at offset %d", ErrMalformedIE, r.off-2)
		}
		length := int(desc & 0x7F)
		id := (desc >> 7) & 0xFF
		if err := r.skip(length); err != nil {
			return fmt.Errorf("%w: header IE 0x%02x: %v", ErrMalformedIE, id, err)
		}
		if id == ieHeaderTermination1 {
			payloadIEs = true
			break
		}
		if id == ieHeaderTermination2 {
			break
		}
	}

	if !payloadIEs {
		return nil
	}

	for len(r.buf)-r.off >= 2 {
		desc, _ := r.u16()
		if desc&0x8000 == 0 {
			return fmt.Errorf("%w: header IE in payload list at offset %d", ErrMalformedIE, r.off-2)
		}
		length := int(desc & 0x07FF)
		group := (desc >> 11) & 0x0F
		if err := r.skip(length); err != nil {
			return fmt.Errorf("%w: payload IE group 0x%x: %v", ErrMalformedIE, group, err)
		}
		if group == iePayloadTermination {
			break
		}
	}
	return nil
}

func (r *reader) beacon(v FrameVersion) (*Beacon, error) {
	// Enhanced beacons carry their descriptors in IEs
	if v == FrameVersion2015 {
		return &Beacon{Enhanced: true}, nil
	}

	b := &Beacon{}

	sf, err := r.u16()
	if err != nil {
		return nil, err
	}
	b.Superframe = SuperframeSpec{
		BeaconOrder:          uint8(sf & sfBeaconOrderMask),
		SuperframeOrder:      uint8((sf >> sfSuperframeOrderPos) & 0x0F),
		FinalCAPSlot:         uint8((sf >> sfFinalCAPSlotPos) & 0x0F),
		BatteryLifeExtension: sf&sfBatteryLifeExt != 0,
		PANCoordinator:       sf&sfPANCoordinator != 0,
		AssociationPermit:    sf&sfAssociationPermit != 0,
	}

	gts, err := r.u8()
	if err != nil {
		return nil, err
	}
	b.GTSPermit = gts&gtsPermit != 0
	if count := int(gts & gtsDescriptorCountMsk); count > 0 {
		directions, err := r.u8()
		if err != nil {
			return nil, err
		}
		b.GTS = make([]GTSDescriptor, count)
		for i := range b.GTS {
			short, err := r.u16()
			if err != nil {
				return nil, err
			}
			slot, err := r.u8()
			if err != nil {
				return nil, err
			}
			b.GTS[i] = GTSDescriptor{
				Short:     ShortAddress(short),
				StartSlot: slot & 0x0F,
				Length:    slot >> 4,
				Receive:   directions&(1<<i) != 0,
			}
		}
	}

	pending, err := r.u8()
	if err != nil {
		return nil, err
	}
	if n := int(pending & pendingShortMask); n > 0 {
		b.PendingShort = make([]ShortAddress, n)
		for i := range b.PendingShort {
			v, err := r.u16()
			if err != nil {
				return nil, err
			}
			b.PendingShort[i] = ShortAddress(v)
		}
	}
	if n := int((pending >> pendingExtendedShift) & pendingShortMask); n > 0 {
		b.PendingExtended = make([]ExtendedAddress, n)
		for i := range b.PendingExtended {
			v, err := r.u64()
			if err != nil {
				return nil, err
			}
			b.PendingExtended[i] = ExtendedAddress(v)
		}
	}

	return b, nil
}

// writer records the would-be length even after buf runs out so the caller
// can report how much room was needed.
type writer struct {
	buf   []byte
	off   int
	short bool
}

func (w *writer) bytes(p []byte) {
	if w.off+len(p) > len(w.buf) {
		w.short = true
	} else {
		copy(w.buf[w.off:], p)
	}
	w.off += len(p)
}

func (w *writer) u8(v uint8) { w.bytes([]byte{v}) }

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.bytes(b[:])
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.bytes(b[:])
}

func (w *writer) address(a Address, withPAN bool) {
	if withPAN {
		w.u16(uint16(a.PAN))
	}
	switch a.Mode {
	case AddressModeShort:
		w.u16(uint16(a.Short))
	case AddressModeExtended:
		w.u64(uint64(a.Extended))
	}
}

func (w *writer) beacon(b *Beacon) {
	sf := b.Superframe
	w.u16(uint16(sf.BeaconOrder&0x0F) |
		uint16(sf.SuperframeOrder&0x0F)<<sfSuperframeOrderPos |
		uint16(sf.FinalCAPSlot&0x0F)<<sfFinalCAPSlotPos |
		flag(sf.BatteryLifeExtension, sfBatteryLifeExt) |
		flag(sf.PANCoordinator, sfPANCoordinator) |
		flag(sf.AssociationPermit, sfAssociationPermit))

	count := min(len(b.GTS), gtsDescriptorCountMsk)
	gts := uint8(count)
	if b.GTSPermit {
		gts |= gtsPermit
	}
	w.u8(gts)
	if count > 0 {
		var directions uint8
		for i := 0; i < count; i++ {
			if b.GTS[i].Receive {
				directions |= 1 << i
			}
		}
		w.u8(directions)
		for i := 0; i < count; i++ {
			d := b.GTS[i]
			w.u16(uint16(d.Short))
			w.u8(d.StartSlot&0x0F | d.Length<<4)
		}
	}

	nShort := min(len(b.PendingShort), pendingShortMask)
	nExt := min(len(b.PendingExtended), pendingShortMask)
	w.u8(uint8(nShort) | uint8(nExt)<<pendingExtendedShift)
	for i := 0; i < nShort; i++ {
		w.u16(uint16(b.PendingShort[i]))
	}
	for i := 0; i < nExt; i++ {
		w.u64(uint64(b.PendingExtended[i]))
	}
}
