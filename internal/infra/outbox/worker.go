package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// Worker polls the Mongo outbox and relays due records with backoff. After
// MaxAttempts failed sends (0 means unlimited) a record is parked as dead.
type Worker struct {
	Store        *Store
	Relay        Relay
	Interval     time.Duration
	ClaimTimeout time.Duration
	ID           string
	Backoff      []time.Duration
	MaxAttempts  int
	Logger       *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Relay.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				sent, err := w.processOnce(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					w.warn("outbox poll failed", "error", err)
					break
				}
				if !sent {
					break
				}
			}
		}
	}
}

// processOnce reports whether a record was claimed.
func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	doc, err := w.Store.Claim(ctx, w.ID, w.claimTimeout())
	if err != nil || doc == nil {
		return false, err
	}
	if err := w.Relay.Send(ctx, doc.record()); err != nil {
		attempts := doc.Attempts + 1
		if w.MaxAttempts > 0 && attempts >= w.MaxAttempts {
			if w.Logger != nil {
				w.Logger.Error("outbox record dead-lettered", "event_id", doc.ID, "name", doc.Name, "attempts", attempts, "error", err)
			}
			return true, w.Store.MarkDead(ctx, doc.ID, err.Error())
		}
		w.warn("outbox publish failed", "event_id", doc.ID, "name", doc.Name, "attempts", attempts, "error", err)
		return true, w.Store.MarkFailed(ctx, doc.ID, time.Now().Add(retryDelay(w.Backoff, doc.Attempts)), err.Error())
	}
	return true, w.Store.MarkSent(ctx, doc.ID)
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) claimTimeout() time.Duration {
	if w.ClaimTimeout <= 0 {
		return time.Minute
	}
	return w.ClaimTimeout
}

// retryDelay walks the backoff schedule and stays on its last step.
func retryDelay(schedule []time.Duration, attempts int) time.Duration {
	switch {
	case len(schedule) == 0:
		return 5 * time.Second
	case attempts < 0:
		return schedule[0]
	case attempts >= len(schedule):
		return schedule[len(schedule)-1]
	}
	return schedule[attempts]
}

func (w *Worker) warn(msg string, args ...any) {
	if w.Logger != nil {
		w.Logger.Warn(msg, args...)
	}
}
