package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "hotelbooking/internal/app/outbox"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	domainroom "hotelbooking/internal/domain/room"
	domainuser "hotelbooking/internal/domain/user"
)

var (
	ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")
	ErrUnitClosed           = errors.New("memory: unit of work already finished")
	ErrReadOnly             = errors.New("memory: write in read-only unit of work")
)

// Factory opens units over one Store. Outbox records staged in a unit are
// handed to Outbox on commit.
type Factory struct {
	Store  *Store
	Outbox *Outbox
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		store:    f.Store,
		outbox:   f.Outbox,
		readOnly: opts.ReadOnly,
		rooms:    make(map[domainroom.ID]staged[*domainroom.Room]),
		bookings: make(map[domainbooking.ID]staged[*domainbooking.Booking]),
		users:    make(map[domainuser.ID]*domainuser.User),
	}, nil
}

type staged[T any] struct {
	value    T
	expected int64
}

// Unit buffers writes and applies them under the store lock on Commit after
// checking that no staged aggregate moved past the version it was loaded at.
type Unit struct {
	store    *Store
	outbox   *Outbox
	readOnly bool

	mu       sync.Mutex
	done     bool
	rooms    map[domainroom.ID]staged[*domainroom.Room]
	bookings map[domainbooking.ID]staged[*domainbooking.Booking]
	users    map[domainuser.ID]*domainuser.User
	records  []appoutbox.EventRecord
}

func (u *Unit) Rooms() domainroom.Repository       { return roomRepository{u: u} }
func (u *Unit) Bookings() domainbooking.Repository { return bookingRepository{u: u} }
func (u *Unit) Users() domainuser.Repository       { return userRepository{u: u} }

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return ErrUnitClosed
	}
	u.done = true

	s := u.store
	s.mu.Lock()
	for id, st := range u.rooms {
		if current, ok := s.rooms[id]; ok && current.Version != st.expected {
			s.mu.Unlock()
			return uow.ErrConcurrentUpdate
		} else if !ok && st.expected != 0 {
			s.mu.Unlock()
			return uow.ErrConcurrentUpdate
		}
	}
	for id, st := range u.bookings {
		if current, ok := s.bookings[id]; ok && current.Version != st.expected {
			s.mu.Unlock()
			return uow.ErrConcurrentUpdate
		} else if !ok && st.expected != 0 {
			s.mu.Unlock()
			return uow.ErrConcurrentUpdate
		}
	}
	for id, st := range u.rooms {
		s.rooms[id] = st.value
	}
	for id, st := range u.bookings {
		s.bookings[id] = st.value
	}
	for id, usr := range u.users {
		s.users[id] = usr
	}
	s.mu.Unlock()

	if u.outbox != nil && len(u.records) > 0 {
		u.outbox.append(u.records...)
	}
	u.records = nil
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.done = true
	u.rooms = nil
	u.bookings = nil
	u.users = nil
	u.records = nil
	return nil
}

func (u *Unit) writable() error {
	if u.done {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (u *Unit) stageRecord(rec appoutbox.EventRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.writable(); err != nil {
		return err
	}
	u.records = append(u.records, rec)
	return nil
}

var _ uow.UoWFactory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
