package middleware

import (
	"context"

	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/queries"
)

// CommandMiddleware decorates a command bus.
type CommandMiddleware func(next commands.Bus) commands.Bus

type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands wraps base so that mws[0] sees every command first.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// CommandFunc lets a closure act as a commands.Bus.
type CommandFunc func(ctx context.Context, cmd commands.Command) (any, error)

func (f CommandFunc) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	return f(ctx, cmd)
}

type QueryFunc func(ctx context.Context, q queries.Query) (any, error)

func (f QueryFunc) Ask(ctx context.Context, q queries.Query) (any, error) {
	return f(ctx, q)
}

// Check inspects a message before its handler runs; a non-nil error stops it.
type Check func(ctx context.Context, message any) error

func CommandCheck(check Check) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return CommandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := check(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryCheck(check Check) QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return QueryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := check(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
