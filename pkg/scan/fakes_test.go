package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/herlein/activescan/pkg/radio"
)

// rxItem is one completion handed to a pending Receive
type rxItem struct {
	data []byte
	err  error
}

// fakeRadio is a radio.Radio driven by the test
type fakeRadio struct {
	rx chan rxItem

	mu           sync.Mutex
	channels     []radio.Channel
	txFrames     [][]byte
	txErr        error
	tuneErr      error
	cancelledRxs int
}

func newFakeRadio() *fakeRadio {
	return &fakeRadio{rx: make(chan rxItem)}
}

func (r *fakeRadio) SetChannel(ch radio.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tuneErr != nil {
		return r.tuneErr
	}
	r.channels = append(r.channels, ch)
	return nil
}

func (r *fakeRadio) Receive(ctx context.Context, buf []byte) (int, error) {
	select {
	case item := <-r.rx:
		n := copy(buf, item.data)
		return n, item.err
	case <-ctx.Done():
		r.mu.Lock()
		r.cancelledRxs++
		r.mu.Unlock()
		return 0, ctx.Err()
	}
}

func (r *fakeRadio) Transmit(ctx context.Context, frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.txErr != nil {
		return r.txErr
	}
	r.txFrames = append(r.txFrames, append([]byte(nil), frame...))
	return nil
}

func (r *fakeRadio) setTxErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txErr = err
}

func (r *fakeRadio) setTuneErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tuneErr = err
}

func (r *fakeRadio) tuned() []radio.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]radio.Channel(nil), r.channels...)
}

func (r *fakeRadio) transmitted() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.txFrames...)
}

func (r *fakeRadio) cancelled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelledRxs
}

// fakeClock hands the test the hop ticker and never sleeps
type fakeClock struct {
	now  time.Time
	tick chan time.Time

	mu     sync.Mutex
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		tick: make(chan time.Time),
	}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) NewTicker(time.Duration) Ticker { return fakeTicker{c: c.tick} }

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
}

func (c *fakeClock) sleepCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sleeps)
}

type fakeTicker struct {
	c chan time.Time
}

func (t fakeTicker) C() <-chan time.Time { return t.c }
func (t fakeTicker) Stop()               {}

// recorder collects reported events
type recorder struct {
	events chan Event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan Event, 64)}
}

func (r *recorder) Report(ev Event) { r.events <- ev }

func (r *recorder) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Errorf("unexpected event %s: %+v", ev.Kind, ev)
	default:
	}
}
