package registers

import (
	"context"
	"errors"
	"testing"
	"time"
)

// memory is an in-memory XDATA space
type memory struct {
	mem   map[uint16]uint8
	pokes [][]byte
	fail  error
}

func newMemory() *memory {
	return &memory{mem: make(map[uint16]uint8)}
}

func (m *memory) PeekByte(address uint16) (uint8, error) {
	if m.fail != nil {
		return 0, m.fail
	}
	return m.mem[address], nil
}

func (m *memory) Poke(address uint16, data []byte) error {
	if m.fail != nil {
		return m.fail
	}
	m.pokes = append(m.pokes, append([]byte(nil), data...))
	for i, b := range data {
		m.mem[address+uint16(i)] = b
	}
	return nil
}

func TestFrequencyWord(t *testing.T) {
	// 2405 MHz is exactly 92.5 crystal periods
	if got := FrequencyWord(2405000000, CrystalHz); got != 0x5C8000 {
		t.Errorf("FrequencyWord(2405 MHz) = 0x%06X, want 0x5C8000", got)
	}

	for _, freq := range []uint32{2405000000, 2440000000, 2480000000} {
		word := FrequencyWord(freq, CrystalHz)
		if word > 0xFFFFFF {
			t.Fatalf("FrequencyWord(%d) = 0x%X, exceeds 24 bits", freq, word)
		}
		back := FrequencyFromWord(word, CrystalHz)
		// one LSB is 26e6/65536 = ~397 Hz
		if diff := int64(freq) - int64(back); diff < 0 || diff > 397 {
			t.Errorf("FrequencyFromWord(FrequencyWord(%d)) = %d, diff %d", freq, back, diff)
		}
	}
}

func TestSetAndGetFrequency(t *testing.T) {
	m := newMemory()
	if err := SetFrequency(m, 2450000000, CrystalHz); err != nil {
		t.Fatalf("SetFrequency() error = %v", err)
	}
	if len(m.pokes) != 1 || len(m.pokes[0]) != 3 {
		t.Fatalf("pokes = %v, want one 3-byte write", m.pokes)
	}

	got, err := GetFrequency(m, CrystalHz)
	if err != nil {
		t.Fatalf("GetFrequency() error = %v", err)
	}
	if got > 2450000000 || 2450000000-got > 397 {
		t.Errorf("GetFrequency() = %d, want ~2450000000", got)
	}
}

func TestStrobeAndState(t *testing.T) {
	m := newMemory()
	if err := Strobe(m, StrobeSIDLE); err != nil {
		t.Fatalf("Strobe() error = %v", err)
	}
	if m.mem[RegRFST] != StrobeSIDLE {
		t.Errorf("RFST = 0x%02X, want 0x%02X", m.mem[RegRFST], StrobeSIDLE)
	}

	m.mem[RegMARCSTATE] = 0xE0 | uint8(StateRX)
	state, err := GetRadioState(m)
	if err != nil {
		t.Fatalf("GetRadioState() error = %v", err)
	}
	if state != StateRX {
		t.Errorf("GetRadioState() = %s, want %s", state, StateRX)
	}
	if StateRXFIFO_OVF.String() != "RXFIFO_OVERFLOW" || !StateRXFIFO_OVF.IsFault() || StateRX.IsFault() {
		t.Error("RXFIFO_OVF naming or fault classification wrong")
	}
}

func TestWaitForState(t *testing.T) {
	m := newMemory()
	m.mem[RegMARCSTATE] = uint8(StateIDLE)

	if err := WaitForState(context.Background(), m, StateIDLE); err != nil {
		t.Errorf("WaitForState(IDLE) error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := WaitForState(ctx, m, StateRX); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForState(RX) error = %v, want deadline exceeded", err)
	}

	m.mem[RegMARCSTATE] = uint8(StateRXFIFO_OVF)
	if err := WaitForState(context.Background(), m, StateIDLE); !errors.Is(err, ErrFIFOFault) {
		t.Errorf("WaitForState() in overflow error = %v, want %v", err, ErrFIFOFault)
	}

	m.fail = errors.New("usb stall")
	if err := WaitForState(context.Background(), m, StateRX); !errors.Is(err, m.fail) {
		t.Errorf("WaitForState() error = %v, want %v", err, m.fail)
	}
}

func TestReadLinkStatus(t *testing.T) {
	m := newMemory()
	m.mem[RegRSSI] = 0xEC // -20 half-dB
	m.mem[RegLQI] = 0x80 | 0x2A

	s, err := ReadLinkStatus(m)
	if err != nil {
		t.Fatalf("ReadLinkStatus() error = %v", err)
	}
	if !s.CRCOk || s.LQI != 0x2A {
		t.Errorf("ReadLinkStatus() = %+v, want CRC ok LQI 0x2A", s)
	}
	if got := s.RSSIDBm(); got != -81 {
		t.Errorf("RSSIDBm() = %v, want -81", got)
	}
}
