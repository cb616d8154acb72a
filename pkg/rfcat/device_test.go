package rfcat

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeEP5 loops commands through a responder and queues its answers on IN
type fakeEP5 struct {
	mu       sync.Mutex
	written  [][]byte
	respond  func(packet []byte) [][]byte
	in       chan []byte
	writeErr error
}

func newFakeEP5(respond func(packet []byte) [][]byte) *fakeEP5 {
	return &fakeEP5{respond: respond, in: make(chan []byte, 64)}
}

func (f *fakeEP5) WriteContext(ctx context.Context, buf []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.mu.Lock()
	f.written = append(f.written, append([]byte(nil), buf...))
	f.mu.Unlock()
	if f.respond != nil {
		for _, r := range f.respond(buf) {
			f.in <- r
		}
	}
	return len(buf), nil
}

func (f *fakeEP5) ReadContext(ctx context.Context, buf []byte) (int, error) {
	select {
	case b := <-f.in:
		return copy(buf, b), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (f *fakeEP5) lastWritten(t *testing.T) []byte {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		t.Fatal("nothing written to EP5")
	}
	return f.written[len(f.written)-1]
}

// answer replies to every command with the given payload
func answer(payload []byte) func([]byte) [][]byte {
	return func(packet []byte) [][]byte {
		return [][]byte{response(packet[0], packet[1], payload)}
	}
}

func TestPoke(t *testing.T) {
	ep := newFakeEP5(answer([]byte{0x00, 0x00}))
	d := newDevice(ep, ep)

	if err := d.PokeByte(0xDFE1, RFModeIDLE); err != nil {
		t.Fatalf("PokeByte() error = %v", err)
	}
	want := []byte{AppSystem, SysCmdPoke, 0x03, 0x00, 0xE1, 0xDF, 0x04}
	if got := ep.lastWritten(t); !bytes.Equal(got, want) {
		t.Errorf("written = % x, want % x", got, want)
	}

	ep.respond = answer([]byte{0x01, 0x00})
	if err := d.Poke(0xDF09, []byte{1, 2}); err == nil {
		t.Error("Poke() with bytes left should fail")
	}
}

func TestPeekByteSkipsStaleResponses(t *testing.T) {
	ep := newFakeEP5(func(packet []byte) [][]byte {
		peek := response(AppSystem, SysCmdPeek, []byte{0x0D})
		return [][]byte{
			{0x00, 0x13},
			response(AppNIC, NICRecv, []byte{0xAA, 0xBB}),
			peek[:3],
			peek[3:],
		}
	})
	d := newDevice(ep, ep)

	got, err := d.PeekByte(0xDF3B)
	if err != nil {
		t.Fatalf("PeekByte() error = %v", err)
	}
	if got != 0x0D {
		t.Errorf("PeekByte() = 0x%02X, want 0x0D", got)
	}
	want := []byte{AppSystem, SysCmdPeek, 0x04, 0x00, 0x01, 0x00, 0x3B, 0xDF}
	if written := ep.lastWritten(t); !bytes.Equal(written, want) {
		t.Errorf("written = % x, want % x", written, want)
	}
}

func TestRFXmit(t *testing.T) {
	ep := newFakeEP5(answer([]byte{0x01}))
	d := newDevice(ep, ep)

	frame := []byte{0x03, 0x08, 0x01, 0xff, 0xff, 0xff, 0xff, 0x07, 0x12, 0x34}
	if err := d.RFXmit(context.Background(), frame); err != nil {
		t.Fatalf("RFXmit() error = %v", err)
	}

	written := ep.lastWritten(t)
	if written[0] != AppNIC || written[1] != NICXmit {
		t.Fatalf("RFXmit sent app 0x%02X cmd 0x%02X", written[0], written[1])
	}
	payload := written[headerLen:]
	if payload[0] != byte(len(frame)) || payload[1] != 0 {
		t.Errorf("data_len = % x, want %d", payload[0:2], len(frame))
	}
	if !bytes.Equal(payload[2:6], []byte{0, 0, 0, 0}) {
		t.Errorf("repeat/offset = % x, want zero", payload[2:6])
	}
	if !bytes.Equal(payload[6:], frame) {
		t.Errorf("data = % x, want % x", payload[6:], frame)
	}

	ep.respond = answer([]byte{0xED})
	if err := d.RFXmit(context.Background(), frame); err == nil {
		t.Error("RFXmit() should fail on device error code")
	}

	if err := d.RFXmit(context.Background(), make([]byte, RFMaxTXBlock+1)); err == nil {
		t.Error("RFXmit() should reject oversized blocks")
	}
}

func TestRFRecv(t *testing.T) {
	ep := newFakeEP5(nil)
	d := newDevice(ep, ep)

	ep.in <- response(AppNIC, NICRecv, []byte{0x02, 0x00, 0x05})
	got, err := d.RFRecv(context.Background())
	if err != nil {
		t.Fatalf("RFRecv() error = %v", err)
	}
	if !bytes.Equal(got, []byte{0x02, 0x00, 0x05}) {
		t.Errorf("RFRecv() = % x", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := d.RFRecv(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RFRecv() error = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("RFRecv() took %v to honor cancellation", elapsed)
	}
}

func TestPingAndInfo(t *testing.T) {
	ep := newFakeEP5(func(packet []byte) [][]byte {
		switch packet[1] {
		case SysCmdPing:
			return [][]byte{response(AppSystem, SysCmdPing, packet[headerLen:])}
		case SysCmdPartNum:
			return [][]byte{response(AppSystem, SysCmdPartNum, []byte{PartNumCC2511})}
		case SysCmdBuildType:
			return [][]byte{response(AppSystem, SysCmdBuildType, []byte("DONSDONGLES r0479\x00"))}
		}
		return nil
	})
	d := newDevice(ep, ep)

	if err := d.Ping([]byte{0x55, 0xAA}); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if pn, err := d.GetPartNum(); err != nil || pn != PartNumCC2511 {
		t.Errorf("GetPartNum() = 0x%02X, %v", pn, err)
	}
	if bt, err := d.GetBuildType(); err != nil || bt != "DONSDONGLES r0479" {
		t.Errorf("GetBuildType() = %q, %v", bt, err)
	}

	ep.respond = func(packet []byte) [][]byte {
		return [][]byte{response(AppSystem, SysCmdPing, []byte{0x55, 0x00})}
	}
	if err := d.Ping([]byte{0x55, 0xAA}); err == nil {
		t.Error("Ping() should fail on echo mismatch")
	}
}

func TestSendErrors(t *testing.T) {
	ep := newFakeEP5(nil)
	ep.writeErr = errors.New("LIBUSB_ERROR_NO_DEVICE")
	d := newDevice(ep, ep)

	if _, err := d.Send(AppSystem, SysCmdPing, nil, 50*time.Millisecond); !errors.Is(err, ep.writeErr) {
		t.Errorf("Send() error = %v, want %v", err, ep.writeErr)
	}

	ep.writeErr = nil
	if _, err := d.Send(AppSystem, SysCmdPing, nil, 50*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send() without answer error = %v, want deadline exceeded", err)
	}
}
