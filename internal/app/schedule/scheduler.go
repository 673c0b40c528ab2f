package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Job is one pass of periodic maintenance.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Ticker runs its jobs once per Interval until ctx is done. A failing job is
// logged and retried on the next tick.
type Ticker struct {
	Interval time.Duration
	Jobs     []Job
	Logger   *slog.Logger
}

var ErrNoInterval = errors.New("schedule: interval must be positive")

func (t *Ticker) Run(ctx context.Context) error {
	if t.Interval <= 0 {
		return ErrNoInterval
	}
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Ticker) tick(ctx context.Context) {
	for _, job := range t.Jobs {
		start := time.Now()
		err := job.Run(ctx)
		if t.Logger == nil {
			continue
		}
		if err != nil {
			t.Logger.Warn("scheduled job failed", "job", job.Name(), "error", err)
			continue
		}
		t.Logger.Debug("scheduled job finished", "job", job.Name(), "duration", time.Since(start))
	}
}
