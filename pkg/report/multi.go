package report

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/herlein/activescan/pkg/logging"
	"github.com/herlein/activescan/pkg/scan"
)

// Multi fans each event out to every sink in order
type Multi []scan.Reporter

func (m Multi) Report(ev scan.Event) {
	for _, r := range m {
		r.Report(ev)
	}
}

// Close closes every sink that is an io.Closer
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// StartStatsReporter logs the scan counters every interval while they
// change. It stops when ctx is cancelled.
func StartStatsReporter(ctx context.Context, interval time.Duration, snapshot func() scan.StatsSnapshot) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var prev scan.StatsSnapshot
		for {
			select {
			case <-ticker.C:
				cur := snapshot()
				if delta := cur.Sub(prev); delta != (scan.StatsSnapshot{}) {
					logging.Infof("last %s: %s", interval, delta)
				}
				prev = cur

			case <-ctx.Done():
				return
			}
		}
	}()
}
