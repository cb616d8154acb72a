// Package sim provides an in-memory radio.Radio with simulated coordinators
// that answer beacon requests, for running the scanner without hardware.
package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
)

// Coordinator is a simulated beaconing device
type Coordinator struct {
	Channel        radio.Channel
	PAN            mac.PANID
	Short          mac.ShortAddress
	Extended       mac.ExtendedAddress // used when non-zero, instead of Short
	PANCoordinator bool
	PermitJoin     bool
	Payload        []byte // beacon payload, e.g. a Zigbee network descriptor

	seq uint8
}

func (c *Coordinator) address() mac.Address {
	if c.Extended != 0 {
		return mac.ExtendedAddr(c.PAN, c.Extended)
	}
	return mac.ShortAddr(c.PAN, c.Short)
}

// beacon encodes the coordinator's next beacon as a PSDU with FCS
func (c *Coordinator) beacon() ([]byte, error) {
	src := c.address()
	f := &mac.Frame{
		Header: mac.Header{
			FrameType: mac.FrameTypeBeacon,
			Version:   mac.FrameVersion2003,
			Sequence:  c.seq,
			Source:    &src,
		},
		Content: &mac.Beacon{
			Superframe: mac.SuperframeSpec{
				BeaconOrder:       15,
				SuperframeOrder:   15,
				FinalCAPSlot:      15,
				PANCoordinator:    c.PANCoordinator,
				AssociationPermit: c.PermitJoin,
			},
		},
		Payload: c.Payload,
	}
	c.seq++

	buf := make([]byte, mac.MaxPSDUSize)
	n, err := mac.Encode(f, buf, mac.FooterExplicit)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Config configures a simulated radio
type Config struct {
	Coordinators []Coordinator

	// CorruptEvery flips a bit in every Nth beacon response; zero disables
	CorruptEvery int

	// Debug callback (optional)
	DebugLog func(format string, args ...interface{})
}

// Radio is a simulated transceiver. Frames queued while tuned to another
// channel are lost on retune, as on real hardware.
type Radio struct {
	config Config

	mu           sync.Mutex
	channel      radio.Channel
	rx           ringBuffer
	tx           ringBuffer
	coordinators []*Coordinator
	responses    int
	closed       bool

	notify chan struct{}
}

// New creates a simulated radio tuned to no channel
func New(config Config) *Radio {
	r := &Radio{
		config: config,
		notify: make(chan struct{}, 1),
	}
	for i := range config.Coordinators {
		c := config.Coordinators[i]
		r.coordinators = append(r.coordinators, &c)
	}
	return r
}

// debug logs a debug message if the debug callback is set
func (r *Radio) debug(format string, args ...interface{}) {
	if r.config.DebugLog != nil {
		r.config.DebugLog(format, args...)
	}
}

// SetChannel retunes the radio and drops frames queued on the old channel
func (r *Radio) SetChannel(ch radio.Channel) error {
	if !ch.Valid() {
		return fmt.Errorf("%w: %d", radio.ErrInvalidChannel, ch)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return radio.ErrClosed
	}
	if ch != r.channel {
		r.rx.clear()
	}
	r.channel = ch
	return nil
}

// Channel returns the channel the radio is tuned to
func (r *Radio) Channel() radio.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.channel
}

// Receive waits for the next queued PSDU, checks and strips its FCS
func (r *Radio) Receive(ctx context.Context, buf []byte) (int, error) {
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return 0, radio.ErrClosed
		}
		item, ok := r.rx.pop()
		r.mu.Unlock()

		if ok {
			if item.err != nil {
				return 0, item.err
			}
			body, _, computed, valid := mac.CheckFCS(item.data)
			if !valid {
				return 0, &radio.CRCError{CRC: computed}
			}
			return copy(buf, body), nil
		}

		select {
		case <-r.notify:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// Transmit appends the FCS, logs the PSDU and lets every coordinator on the
// current channel answer a beacon request.
func (r *Radio) Transmit(ctx context.Context, frame []byte) error {
	if len(frame) > mac.MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", radio.ErrFrameTooLong, len(frame))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return radio.ErrClosed
	}

	psdu := mac.AppendFCS(append([]byte(nil), frame...))
	r.tx.push(item{data: psdu})

	f, err := mac.Decode(frame, mac.FooterNone)
	if err != nil {
		return nil
	}
	if cmd, ok := f.Content.(mac.Command); !ok || cmd.ID != mac.CommandBeaconRequest {
		return nil
	}

	for _, c := range r.coordinators {
		if c.Channel != r.channel {
			continue
		}
		beacon, err := c.beacon()
		if err != nil {
			r.debug("sim: coordinator %s: %v", c.address(), err)
			continue
		}
		r.responses++
		if r.config.CorruptEvery > 0 && r.responses%r.config.CorruptEvery == 0 {
			beacon[len(beacon)/2] ^= 0x10
		}
		r.rx.push(item{data: beacon})
		r.debug("sim: ch %d %s answers seq %d", r.channel, c.address(), f.Header.Sequence)
	}
	r.wake()
	return nil
}

// InjectRx queues a PSDU (FCS included) on the current channel
func (r *Radio) InjectRx(psdu []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rx.push(item{data: append([]byte(nil), psdu...)})
	r.wake()
}

// InjectError makes the next pending Receive fail with err
func (r *Radio) InjectError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rx.push(item{err: err})
	r.wake()
}

// GetTxLog returns the transmitted PSDUs, FCS included
func (r *Radio) GetTxLog() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tx.snapshot()
}

// Close fails all further calls and wakes a pending Receive
func (r *Radio) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.wake()
	return nil
}

// wake must be called with r.mu held
func (r *Radio) wake() {
	select {
	case r.notify <- struct{}{}:
	default:
	}
}
