package middleware

import (
	"context"

	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/locks"
)

// LockingCommand names the resources a command mutates.
type LockingCommand interface {
	commands.Command
	LockKeys() []string
}

// Locking holds per-resource locks from before the transaction begins until after it commits.
func Locking(locker *locks.Keyed) CommandMiddleware {
	if locker == nil {
		panic("middleware: locker required")
	}
	return func(next commands.Bus) commands.Bus {
		return CommandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			lc, ok := cmd.(LockingCommand)
			if !ok {
				return next.Dispatch(ctx, cmd)
			}
			release, err := locker.Acquire(ctx, lc.LockKeys()...)
			if err != nil {
				return nil, err
			}
			defer release()
			return next.Dispatch(ctx, cmd)
		})
	}
}
