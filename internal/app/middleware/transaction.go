package middleware

import (
	"context"
	"errors"

	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/uow"
)

// Transaction runs the command inside one unit of work and fires after-commit
// hooks once it commits. An attempt that loses an optimistic version check is
// replayed on a fresh unit up to retries more times, so the handler re-reads
// the room counters it decided on.
func Transaction(factory uow.UoWFactory, retries int) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	if retries < 0 {
		retries = 0
	}
	return func(next commands.Bus) commands.Bus {
		return CommandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			var (
				res any
				err error
			)
			for attempt := 0; attempt <= retries; attempt++ {
				res, err = runInUnit(ctx, factory, next, cmd)
				if !errors.Is(err, uow.ErrConcurrentUpdate) {
					break
				}
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
			}
			return res, err
		})
	}
}

func runInUnit(ctx context.Context, factory uow.UoWFactory, next commands.Bus, cmd commands.Command) (any, error) {
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	execCtx, hooks := uow.WithHooks(uow.Bind(ctx, unit))
	res, err := next.Dispatch(execCtx, cmd)
	if err != nil {
		hooks.Discard()
		_ = unit.Rollback(execCtx)
		return nil, err
	}
	if err := unit.Commit(execCtx); err != nil {
		hooks.Discard()
		return nil, err
	}
	hooks.Run()
	return res, nil
}
