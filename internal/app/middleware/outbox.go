package middleware

import (
	"context"
	"log/slog"

	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/outbox"
)

// OutboxFlush asks the outbox to push committed records. The command already
// committed, so a flush failure is logged and the worker retries later.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return CommandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil && logger != nil {
				logger.Warn("outbox flush failed", "command", cmd.Key(), "error", err)
			}
			return res, nil
		})
	}
}
