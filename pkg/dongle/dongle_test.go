package dongle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
	"github.com/herlein/activescan/pkg/registers"
)

// fakeTransport records commands in order and serves RF blocks from a channel
type fakeTransport struct {
	mem     map[uint16]uint8
	calls   []string
	blocks  chan []byte
	recvErr error
	xmit    [][]byte
	fail    map[string]error
}

func newFakeTransport() *fakeTransport {
	f := &fakeTransport{
		mem:    make(map[uint16]uint8),
		blocks: make(chan []byte, 8),
		fail:   make(map[string]error),
	}
	f.mem[registers.RegMARCSTATE] = uint8(registers.StateIDLE)
	return f
}

func (f *fakeTransport) PeekByte(address uint16) (uint8, error) {
	if address == registers.RegMARCSTATE {
		f.calls = append(f.calls, fmt.Sprintf("peek %04X", address))
	}
	return f.mem[address], nil
}

func (f *fakeTransport) Poke(address uint16, data []byte) error {
	f.calls = append(f.calls, fmt.Sprintf("poke %04X % x", address, data))
	if err := f.fail["poke"]; err != nil {
		return err
	}
	for i, b := range data {
		f.mem[address+uint16(i)] = b
	}
	return nil
}

func (f *fakeTransport) RFXmit(ctx context.Context, data []byte) error {
	f.xmit = append(f.xmit, append([]byte(nil), data...))
	return f.fail["xmit"]
}

func (f *fakeTransport) RFRecv(ctx context.Context) ([]byte, error) {
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	select {
	case b := <-f.blocks:
		return b, nil
	case <-ctx.Done():
		return nil, errors.New("libusb: transfer cancelled")
	}
}

func (f *fakeTransport) SetModeRX() error {
	f.calls = append(f.calls, "rx")
	return f.fail["rx"]
}

func (f *fakeTransport) SetModeIDLE() error {
	f.calls = append(f.calls, "idle")
	return f.fail["idle"]
}

func (f *fakeTransport) SetAmpMode(mode uint8) error {
	f.calls = append(f.calls, fmt.Sprintf("amp %d", mode))
	return nil
}

func TestInit(t *testing.T) {
	tr := newFakeTransport()
	r := New(tr, Config{Amplifier: true})
	if err := r.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	want := []string{"amp 1", "poke DF06 00", "idle"}
	if strings.Join(tr.calls, ";") != strings.Join(want, ";") {
		t.Errorf("calls = %q, want %q", tr.calls, want)
	}
}

func TestSetChannelSequence(t *testing.T) {
	tr := newFakeTransport()
	var logged []string
	r := New(tr, Config{DebugLog: func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}})

	if err := r.SetChannel(11); err != nil {
		t.Fatalf("SetChannel() error = %v", err)
	}
	want := []string{"idle", "poke DF09 5c 80 00", "poke DFE1 01", "peek DF3B", "rx"}
	if strings.Join(tr.calls, ";") != strings.Join(want, ";") {
		t.Errorf("calls = %q, want %q", tr.calls, want)
	}
	if r.Channel() != 11 {
		t.Errorf("Channel() = %d, want 11", r.Channel())
	}

	if len(logged) != 1 || logged[0] != "dongle: channel 11 tuned to 2405000000 Hz" {
		t.Errorf("debug log = %q, want the 2405 MHz readback", logged)
	}
}

func TestSetChannelErrors(t *testing.T) {
	tr := newFakeTransport()
	r := New(tr, Config{})

	if err := r.SetChannel(10); !errors.Is(err, radio.ErrInvalidChannel) {
		t.Errorf("SetChannel(10) error = %v, want %v", err, radio.ErrInvalidChannel)
	}
	if len(tr.calls) != 0 {
		t.Errorf("invalid channel touched the dongle: %q", tr.calls)
	}

	stall := errors.New("pipe stall")
	tr.fail["poke"] = stall
	if err := r.SetChannel(15); !errors.Is(err, stall) {
		t.Errorf("SetChannel() error = %v, want %v", err, stall)
	}
	if r.Channel() != 0 {
		t.Errorf("Channel() = %d after failed tune, want 0", r.Channel())
	}
}

func TestSetChannelWaitsForCalibration(t *testing.T) {
	tests := []struct {
		name      string
		state     registers.RadioState
		wantErr   error
		wantClear bool
	}{
		{"stuck calibrating", registers.StateMAN_CAL, context.DeadlineExceeded, false},
		{"rx overflow", registers.StateRXFIFO_OVF, registers.ErrFIFOFault, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFakeTransport()
			tr.mem[registers.RegMARCSTATE] = uint8(tt.state)
			r := New(tr, Config{CalibrationTimeout: 5 * time.Millisecond})

			err := r.SetChannel(20)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetChannel() error = %v, want %v", err, tt.wantErr)
			}

			calls := strings.Join(tr.calls, ";")
			if strings.Contains(calls, "rx") {
				t.Errorf("entered RX before calibration finished: %q", tr.calls)
			}
			if got := strings.HasSuffix(calls, "poke DFE1 04"); got != tt.wantClear {
				t.Errorf("SIDLE sent = %v, want %v (calls %q)", got, tt.wantClear, tr.calls)
			}
			if r.Channel() != 0 {
				t.Errorf("Channel() = %d after failed calibration, want 0", r.Channel())
			}
		})
	}
}

func block(body []byte) []byte {
	psdu := mac.AppendFCS(append([]byte(nil), body...))
	return append([]byte{byte(len(psdu))}, psdu...)
}

func TestReceive(t *testing.T) {
	tr := newFakeTransport()
	var logged []string
	r := New(tr, Config{DebugLog: func(format string, args ...any) {
		logged = append(logged, fmt.Sprintf(format, args...))
	}})

	body := []byte{0x00, 0x80, 0x07, 0x34, 0x12, 0x00, 0x00, 0xff, 0xcf, 0x00, 0x00}
	tr.blocks <- block(body)
	buf := make([]byte, mac.MaxPSDUSize)
	n, err := r.Receive(context.Background(), buf)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if !bytes.Equal(buf[:n], body) {
		t.Errorf("Receive() = % x, want % x", buf[:n], body)
	}
	if len(logged) != 1 {
		t.Errorf("debug log lines = %d, want 1", len(logged))
	}

	corrupt := block(body)
	corrupt[3] ^= 0xff
	tr.blocks <- corrupt
	_, err = r.Receive(context.Background(), buf)
	var crcErr *radio.CRCError
	if !errors.As(err, &crcErr) {
		t.Fatalf("Receive() error = %v, want *radio.CRCError", err)
	}
	if crcErr.CRC != mac.FCS(corrupt[1:len(corrupt)-2]) {
		t.Errorf("CRCError.CRC = 0x%04x, want computed FCS", crcErr.CRC)
	}

	tr.blocks <- []byte{0x09, 0x01, 0x02}
	if _, err := r.Receive(context.Background(), buf); !errors.Is(err, ErrMalformedBlock) {
		t.Errorf("Receive() error = %v, want %v", err, ErrMalformedBlock)
	}
}

func TestReceiveCancelled(t *testing.T) {
	tr := newFakeTransport()
	r := New(tr, Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := r.Receive(ctx, make([]byte, mac.MaxPSDUSize)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Receive() error = %v, want deadline exceeded", err)
	}

	tr.recvErr = errors.New("EP5 stall")
	_, err := r.Receive(context.Background(), make([]byte, mac.MaxPSDUSize))
	if !errors.Is(err, tr.recvErr) {
		t.Errorf("Receive() error = %v, want %v", err, tr.recvErr)
	}
	var crcErr *radio.CRCError
	if errors.As(err, &crcErr) {
		t.Error("transport failure must not look like a CRC error")
	}
}

func TestTransmit(t *testing.T) {
	tr := newFakeTransport()
	r := New(tr, Config{})

	frame := []byte{0x03, 0x08, 0x2a, 0xff, 0xff, 0xff, 0xff, 0x07}
	if err := r.Transmit(context.Background(), frame); err != nil {
		t.Fatalf("Transmit() error = %v", err)
	}
	if len(tr.xmit) != 1 {
		t.Fatalf("RFXmit calls = %d, want 1", len(tr.xmit))
	}
	sent := tr.xmit[0]
	if int(sent[0]) != len(frame)+mac.FCSSize || len(sent) != len(frame)+mac.FCSSize+1 {
		t.Fatalf("sent PHR %d len %d for %d-byte frame", sent[0], len(sent), len(frame))
	}
	if _, _, _, ok := mac.CheckFCS(sent[1:]); !ok {
		t.Error("sent PSDU has a bad FCS")
	}

	if err := r.Transmit(context.Background(), make([]byte, mac.MaxFrameSize+1)); !errors.Is(err, radio.ErrFrameTooLong) {
		t.Errorf("Transmit(oversized) error = %v, want %v", err, radio.ErrFrameTooLong)
	}
}
