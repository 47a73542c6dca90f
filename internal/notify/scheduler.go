package notify

import (
	"context"
	"log/slog"
	"time"
)

// RunDaily executes one check immediately and then again after every
// local-midnight boundary, until ctx is cancelled. Check errors are logged
// and do not stop the loop; the next boundary gets a fresh attempt.
func (n *Notifier) RunDaily(ctx context.Context) error {
	if _, err := n.Check(ctx); err != nil {
		slog.Warn("startup birthday check failed", slog.String("error", err.Error()))
	}

	for {
		timer := time.NewTimer(untilNextMidnight(n.Clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			if _, err := n.Check(ctx); err != nil {
				slog.Warn("midnight birthday check failed", slog.String("error", err.Error()))
			}
		}
	}
}

// untilNextMidnight computes the wait to the next local day boundary. A small
// slack past midnight avoids firing on the old date when timers wake early.
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now) + time.Second
}
