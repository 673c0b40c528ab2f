package uow

import (
	"context"
	"errors"

	"hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/user"
)

// ErrConcurrentUpdate is returned on commit when a staged aggregate changed since it was loaded.
var ErrConcurrentUpdate = errors.New("uow: concurrent update detected")

// UnitOfWork groups room and booking writes so counters and booking status commit together.
type UnitOfWork interface {
	Rooms() room.Repository
	Bookings() booking.Repository
	Users() user.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that must travel inside the context, such as a mongo session.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
