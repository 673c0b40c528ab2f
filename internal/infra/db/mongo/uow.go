package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	domainroom "hotelbooking/internal/domain/room"
	domainuser "hotelbooking/internal/domain/user"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Booking and room writes of one command commit together; this needs a replica set.
type Factory struct {
	DB *mongo.Database

	RoomsRepo    *RoomRepository
	BookingsRepo *BookingRepository
	UsersRepo    *UserRepository
}

func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:           db,
		RoomsRepo:    NewRoomRepository(db),
		BookingsRepo: NewBookingRepository(db),
		UsersRepo:    NewUserRepository(db),
	}
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a session. Read-only units skip the transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.RoomsRepo == nil || f.BookingsRepo == nil || f.UsersRepo == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	unit := &Unit{
		session:  session,
		rooms:    f.RoomsRepo,
		bookings: f.BookingsRepo,
		users:    f.UsersRepo,
	}
	if opts.ReadOnly {
		return unit, nil
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	unit.inTxn = true
	return unit, nil
}

type Unit struct {
	session mongo.Session
	inTxn   bool

	rooms    *RoomRepository
	bookings *BookingRepository
	users    *UserRepository
}

func (u *Unit) Rooms() domainroom.Repository       { return u.rooms }
func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }
func (u *Unit) Users() domainuser.Repository       { return u.users }

// Commit maps a write conflict inside the transaction to uow.ErrConcurrentUpdate.
func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return writeError(u.session.CommitTransaction(ctx))
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

// writeConflictCode is WriteConflict, raised when two transactions touch one document.
const writeConflictCode = 112

// writeError maps the ways Mongo reports a lost race to uow.ErrConcurrentUpdate
// so the transaction middleware can replay the command.
func writeError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return uow.ErrConcurrentUpdate
	}
	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) && (srvErr.HasErrorLabel("TransientTransactionError") || srvErr.HasErrorCode(writeConflictCode)) {
		return uow.ErrConcurrentUpdate
	}
	return err
}

var _ uow.UoWFactory = Factory{}
var _ uow.ContextInjector = (*Unit)(nil)
