package policies

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultEffectTimeout = 10 * time.Second

// Committed describes the best-effort work that follows a committed booking mutation.
type Committed struct {
	Notice  *BookingNotice
	Receipt *Receipt
	Ledger  []LedgerEntry
}

// Effects runs post-commit side effects in the background. Failures are logged and dropped.
type Effects struct {
	Notifier Notifier
	Receipts ReceiptArchive
	Ledger   Ledger
	Timeout  time.Duration
	Logger   *slog.Logger

	wg sync.WaitGroup
}

// Dispatch detaches from the request context so a client disconnect does not cancel delivery.
func (e *Effects) Dispatch(ctx context.Context, c Committed) {
	if e == nil {
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout())
		defer cancel()
		e.run(runCtx, c)
	}()
}

// Wait blocks until every dispatched effect finished; used on shutdown and in tests.
func (e *Effects) Wait() {
	if e == nil {
		return
	}
	e.wg.Wait()
}

func (e *Effects) run(ctx context.Context, c Committed) {
	if len(c.Ledger) > 0 && e.Ledger != nil {
		if err := e.Ledger.Append(ctx, c.Ledger...); err != nil {
			e.warn("inventory ledger append failed", "room_id", c.Ledger[0].RoomID, "error", err)
		}
	}
	if c.Receipt != nil && e.Receipts != nil {
		if _, err := e.Receipts.Store(ctx, *c.Receipt); err != nil {
			e.warn("receipt archive failed", "booking_id", c.Receipt.BookingID, "error", err)
		}
	}
	if c.Notice != nil && e.Notifier != nil {
		var err error
		switch c.Notice.Kind {
		case NoticeCancellation:
			err = e.Notifier.SendCancellationConfirmation(ctx, *c.Notice)
		default:
			err = e.Notifier.SendBookingConfirmation(ctx, *c.Notice)
		}
		if err != nil {
			e.warn("notification failed", "booking_id", c.Notice.BookingID, "kind", c.Notice.Kind, "error", err)
		}
	}
}

func (e *Effects) timeout() time.Duration {
	if e.Timeout <= 0 {
		return defaultEffectTimeout
	}
	return e.Timeout
}

func (e *Effects) warn(msg string, args ...any) {
	if e.Logger != nil {
		e.Logger.Warn(msg, args...)
	}
}
