package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/herlein/activescan/pkg/mac"
	"github.com/herlein/activescan/pkg/radio"
)

// Scanner runs the active scan loop on one radio. The radio, the frame
// buffers, the sequence counter and the channel scheduler belong to the loop;
// Stats and Networks may be read from other goroutines.
type Scanner struct {
	radio    radio.Radio
	reporter Reporter
	config   *ScanConfig
	clock    Clock

	// Loop state
	sched *ChannelScheduler
	seq   uint8
	txBuf [mac.MaxPSDUSize]byte
	rxBuf [mac.MaxPSDUSize]byte

	// State
	mu      sync.Mutex
	running bool

	tracker *NetworkTracker
	stats   Stats
}

type receiveResult struct {
	n   int
	err error
}

// New creates a Scanner. A nil config uses DefaultConfig and a nil reporter
// discards events.
func New(r radio.Radio, reporter Reporter, config *ScanConfig) *Scanner {
	if config == nil {
		config = DefaultConfig()
	}
	if reporter == nil {
		reporter = discardReporter{}
	}
	clock := config.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	s := &Scanner{
		radio:    r,
		reporter: reporter,
		config:   config,
		clock:    clock,
		sched:    NewChannelScheduler(config.Channels),
		tracker:  NewNetworkTracker(),
	}
	s.tracker.SetCallbacks(config.OnNetworkDiscovered, config.OnNetworkExpired)
	return s
}

// debug logs a debug message if the debug callback is set
func (s *Scanner) debug(format string, args ...interface{}) {
	if s.config.DebugLog != nil {
		s.config.DebugLog(format, args...)
	}
}

// Run tunes the radio to the first channel and scans until ctx is cancelled.
// Faults inside the loop are reported as events and never end the scan; Run
// returns an error only for invalid configuration, a failed initial tune or
// cancellation.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := s.start(); err != nil {
		return err
	}
	defer s.stop()

	ch := s.sched.Current()
	if err := s.radio.SetChannel(ch); err != nil {
		return fmt.Errorf("failed to tune channel %d: %w", ch, err)
	}
	s.debug("Run: tuned to channel %d (%d MHz), %d channels, hop every %v", ch, ch.FrequencyMHz(), s.sched.Len(), s.config.HopInterval)

	ticker := s.clock.NewTicker(s.config.HopInterval)
	defer ticker.Stop()

	for {
		if err := s.step(ctx, ticker.C()); err != nil {
			return err
		}
		s.clock.Sleep(s.config.QuiescentDelay)
	}
}

func (s *Scanner) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrScannerRunning
	}
	s.running = true
	return nil
}

func (s *Scanner) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// IsRunning returns true while Run is active
func (s *Scanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// step races one receive against the hop ticker. The losing receive is
// cancelled and joined before the radio or buffers are used again.
func (s *Scanner) step(ctx context.Context, tick <-chan time.Time) error {
	rxCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan receiveResult, 1)
	go func() {
		n, err := s.radio.Receive(rxCtx, s.rxBuf[:])
		done <- receiveResult{n: n, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		s.handleReceive(res)
	case <-tick:
		cancel()
		<-done
		s.hop(ctx)
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
	return nil
}

// handleReceive turns a completed receive into events
func (s *Scanner) handleReceive(res receiveResult) {
	now := s.clock.Now()
	ch := s.sched.Current()

	if res.err != nil {
		var crcErr *radio.CRCError
		if errors.As(res.err, &crcErr) {
			s.stats.CRCFaults.Add(1)
			s.debug("handleReceive: ch %d crc fault 0x%04x", ch, crcErr.CRC)
			s.reporter.Report(Event{Kind: EventCRCFault, Time: now, Channel: ch, CRC: crcErr.CRC, Err: res.err})
			return
		}
		s.stats.ReceiveFaults.Add(1)
		s.debug("handleReceive: ch %d receive fault: %v", ch, res.err)
		s.reporter.Report(Event{Kind: EventReceiveFault, Time: now, Channel: ch, Err: res.err})
		return
	}

	data := s.rxBuf[:res.n]
	frame, err := mac.Decode(data, mac.FooterNone)
	if err != nil {
		s.stats.DecodeErrors.Add(1)
		raw := make([]byte, len(data))
		copy(raw, data)
		s.debug("handleReceive: ch %d decode error: %v [% x]", ch, err, raw)
		s.reporter.Report(Event{Kind: EventDecodeError, Time: now, Channel: ch, Raw: raw, Err: err})
		return
	}

	obs, ok := Classify(frame)
	if !ok {
		s.stats.FramesIgnored.Add(1)
		s.debug("handleReceive: ch %d ignoring %s frame seq %d", ch, frame.Header.FrameType, frame.Header.Sequence)
		return
	}

	obs.Channel = ch
	obs.Time = now
	s.stats.Beacons.Add(1)
	if s.tracker.Update(obs) {
		s.debug("handleReceive: new network %s on ch %d", obs.Source, ch)
	}
	s.reporter.Report(Event{Kind: EventBeacon, Time: now, Channel: ch, Observation: &obs})
}

// hop advances the channel, retunes and broadcasts a beacon request. The
// sequence number is consumed whether or not the request goes out.
func (s *Scanner) hop(ctx context.Context) {
	s.stats.Hops.Add(1)
	s.sched.Advance()
	ch := s.sched.Current()
	seq := s.seq
	s.seq++

	if s.config.NetworkExpiry > 0 {
		if n := s.tracker.PruneOld(s.clock.Now().Add(-s.config.NetworkExpiry)); n > 0 {
			s.debug("hop: expired %d networks", n)
		}
	}

	if err := s.transmitRequest(ctx, ch, seq); err != nil {
		s.stats.TransmitFaults.Add(1)
		s.debug("hop: ch %d seq %d: %v", ch, seq, err)
		s.reporter.Report(Event{Kind: EventTransmitFault, Time: s.clock.Now(), Channel: ch, Sequence: seq, Err: err})
		return
	}

	s.stats.RequestsSent.Add(1)
	s.debug("hop: ch %d (%d/%d) seq %d sent", ch, s.sched.Index()+1, s.sched.Len(), seq)
	s.reporter.Report(Event{Kind: EventRequestSent, Time: s.clock.Now(), Channel: ch, Sequence: seq})
}

func (s *Scanner) transmitRequest(ctx context.Context, ch radio.Channel, seq uint8) error {
	if err := s.radio.SetChannel(ch); err != nil {
		return fmt.Errorf("failed to tune channel %d: %w", ch, err)
	}

	req := BuildBeaconRequest(seq, s.config.FrameVersion)
	n, err := mac.Encode(req, s.txBuf[:], mac.FooterNone)
	if err != nil {
		return fmt.Errorf("failed to encode beacon request: %w", err)
	}

	if err := s.radio.Transmit(ctx, s.txBuf[:n]); err != nil {
		return fmt.Errorf("failed to transmit beacon request: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the loop counters
func (s *Scanner) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// Networks returns the networks heard so far
func (s *Scanner) Networks() []*Network {
	return s.tracker.GetAllNetworks()
}

// Tracker returns the network tracker (for advanced usage)
func (s *Scanner) Tracker() *NetworkTracker {
	return s.tracker
}
