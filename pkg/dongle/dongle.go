// Package dongle drives an RfCat-protocol USB dongle as an IEEE 802.15.4
// radio. RF blocks on the wire are PHR (frame length) followed by the PSDU.
package dongle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
	"github.com/herlein/activescan/pkg/registers"
	"github.com/herlein/activescan/pkg/rfcat"
)

// DefaultCalibrationTimeout bounds the wait for SCAL to finish. Calibration
// itself takes under 1 ms; the rest is USB polling latency.
const DefaultCalibrationTimeout = 50 * time.Millisecond

// ErrMalformedBlock indicates an RF block whose PHR does not match its size
var ErrMalformedBlock = errors.New("malformed RF block")

// Transport is the dongle command set the radio needs; *rfcat.Device
// implements it.
type Transport interface {
	registers.Memory
	RFXmit(ctx context.Context, data []byte) error
	RFRecv(ctx context.Context) ([]byte, error)
	SetModeRX() error
	SetModeIDLE() error
	SetAmpMode(mode uint8) error
}

var _ Transport = (*rfcat.Device)(nil)

// Config holds dongle options
type Config struct {
	// CrystalHz defaults to registers.CrystalHz
	CrystalHz uint32

	// Amplifier enables the front-end amplifier where fitted
	Amplifier bool

	// CalibrationTimeout defaults to DefaultCalibrationTimeout
	CalibrationTimeout time.Duration

	// DebugLog receives per-frame link status when set. Reading link status
	// costs two USB round trips per frame.
	DebugLog func(format string, args ...any)
}

// Radio implements radio.Radio over a Transport
type Radio struct {
	transport Transport
	config    Config

	mu      sync.Mutex
	channel radio.Channel
}

var _ radio.Radio = (*Radio)(nil)

// New wraps transport as an 802.15.4 radio
func New(transport Transport, config Config) *Radio {
	if config.CrystalHz == 0 {
		config.CrystalHz = registers.CrystalHz
	}
	if config.CalibrationTimeout <= 0 {
		config.CalibrationTimeout = DefaultCalibrationTimeout
	}
	return &Radio{transport: transport, config: config}
}

// Init applies one-time settings and leaves the radio idle
func (r *Radio) Init() error {
	mode := uint8(rfcat.AmpModeOff)
	if r.config.Amplifier {
		mode = rfcat.AmpModeOn
	}
	if err := r.transport.SetAmpMode(mode); err != nil {
		return err
	}
	// Hardware channel number stays 0; each channel is its own FREQ word
	if err := r.transport.Poke(registers.RegCHANNR, []byte{0}); err != nil {
		return fmt.Errorf("failed to clear CHANNR: %w", err)
	}
	return r.transport.SetModeIDLE()
}

// SetChannel retunes to ch: idle, new FREQ, calibrate and wait for the
// radio to settle back in IDLE, then receive
func (r *Radio) SetChannel(ch radio.Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", radio.ErrInvalidChannel, ch)
	}

	if err := r.transport.SetModeIDLE(); err != nil {
		return fmt.Errorf("channel %d: %w", ch, err)
	}
	if err := registers.SetFrequency(r.transport, ch.Frequency(), r.config.CrystalHz); err != nil {
		return fmt.Errorf("channel %d: %w", ch, err)
	}
	if err := registers.Strobe(r.transport, registers.StrobeSCAL); err != nil {
		return fmt.Errorf("channel %d: calibrate: %w", ch, err)
	}
	if err := r.waitCalibrated(); err != nil {
		return fmt.Errorf("channel %d: calibrate: %w", ch, err)
	}
	if err := r.transport.SetModeRX(); err != nil {
		return fmt.Errorf("channel %d: %w", ch, err)
	}

	if r.config.DebugLog != nil {
		if hz, err := registers.GetFrequency(r.transport, r.config.CrystalHz); err == nil {
			r.config.DebugLog("dongle: channel %d tuned to %d Hz", ch, hz)
		}
	}

	r.mu.Lock()
	r.channel = ch
	r.mu.Unlock()
	return nil
}

// waitCalibrated polls MARCSTATE until SCAL has returned the radio to IDLE.
// A FIFO fault is cleared with SIDLE so the next tune starts clean.
func (r *Radio) waitCalibrated() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.CalibrationTimeout)
	defer cancel()

	err := registers.WaitForState(ctx, r.transport, registers.StateIDLE)
	if errors.Is(err, registers.ErrFIFOFault) {
		if clearErr := registers.Strobe(r.transport, registers.StrobeSIDLE); clearErr != nil {
			return errors.Join(err, clearErr)
		}
	}
	return err
}

// Channel returns the last channel tuned successfully
func (r *Radio) Channel() radio.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel
}

// Receive waits for the next RF block, checks its FCS and copies the frame
// body into buf
func (r *Radio) Receive(ctx context.Context, buf []byte) (int, error) {
	block, err := r.transport.RFRecv(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("receive: %w", err)
	}

	psdu, err := splitPHR(block)
	if err != nil {
		return 0, err
	}

	body, _, computed, ok := mac.CheckFCS(psdu)
	if !ok {
		return 0, &radio.CRCError{CRC: computed}
	}

	if r.config.DebugLog != nil {
		if status, err := registers.ReadLinkStatus(r.transport); err == nil {
			r.config.DebugLog("dongle: %d bytes RSSI %.1f dBm LQI %d", len(body), status.RSSIDBm(), status.LQI)
		}
	}

	return copy(buf, body), nil
}

// Transmit appends the FCS, prefixes the PHR and sends the block
func (r *Radio) Transmit(ctx context.Context, frame []byte) error {
	if len(frame) > mac.MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", radio.ErrFrameTooLong, len(frame))
	}

	psdu := mac.AppendFCS(append([]byte(nil), frame...))
	block := append([]byte{byte(len(psdu))}, psdu...)

	return r.transport.RFXmit(ctx, block)
}

// splitPHR validates the length byte and returns the PSDU
func splitPHR(block []byte) ([]byte, error) {
	if len(block) < 1 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedBlock)
	}
	length := int(block[0])
	if length > mac.MaxPSDUSize || length != len(block)-1 {
		return nil, fmt.Errorf("%w: PHR %d, %d bytes follow", ErrMalformedBlock, length, len(block)-1)
	}
	return block[1:], nil
}
