package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/app/middleware"
	"hotelbooking/internal/app/uow"
	"hotelbooking/internal/domain/pricing"
	domainroom "hotelbooking/internal/domain/room"
)

var now = time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

func seededFactory(t *testing.T, slots int) Factory {
	t.Helper()
	room, err := domainroom.NewRoom(domainroom.CreateParams{
		ID:           "room-1",
		Name:         "double",
		Price:        100,
		Taxes:        pricing.TaxRates{VAT: 10},
		MaxOccupancy: 2,
		TotalSlots:   slots,
		Now:          now,
	})
	require.NoError(t, err)
	store := NewStore()
	store.SeedRooms(room)
	return Factory{Store: store, Outbox: NewOutbox(nil)}
}

func reserveOne(t *testing.T, ctx context.Context, unit uow.UnitOfWork) {
	t.Helper()
	room, err := unit.Rooms().ByID(ctx, "room-1")
	require.NoError(t, err)
	require.NoError(t, room.Hold(1, "b", domainroom.ReasonReserve, now))
	require.NoError(t, unit.Rooms().Save(ctx, room))
}

func TestUnitDetectsLostUpdate(t *testing.T) {
	ctx := context.Background()
	f := seededFactory(t, 1)

	first, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	second, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)

	reserveOne(t, ctx, first)
	reserveOne(t, ctx, second)

	require.NoError(t, first.Commit(ctx))
	assert.ErrorIs(t, second.Commit(ctx), uow.ErrConcurrentUpdate)

	check, err := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	room, err := check.Rooms().ByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 1, room.BookedSlots)
	assert.Equal(t, 0, room.AvailableSlots)
}

func TestUnitIsolationAndRollback(t *testing.T) {
	ctx := context.Background()
	f := seededFactory(t, 3)

	writer, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	reserveOne(t, ctx, writer)

	reader, err := f.Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	room, err := reader.Rooms().ByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 0, room.BookedSlots, "staged writes stay private to their unit")

	own, err := writer.Rooms().ByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 1, own.BookedSlots)

	require.NoError(t, writer.Rollback(ctx))
	assert.ErrorIs(t, writer.Rooms().Save(ctx, own), ErrUnitClosed)
	assert.ErrorIs(t, writer.Commit(ctx), ErrUnitClosed)

	room, err = reader.Rooms().ByID(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 0, room.BookedSlots)
	assert.ErrorIs(t, reader.Rooms().Save(ctx, room), ErrReadOnly)
}

func TestUnitRoomNotFound(t *testing.T) {
	ctx := context.Background()
	unit, err := seededFactory(t, 1).Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	_, err = unit.Rooms().ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainroom.ErrNotFound)
}

func TestIdempotencyStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)
	clock := now
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "u1:booking.create:k", Payload: []byte("first"), OccurredAt: now}))
	require.NoError(t, s.Save(ctx, middleware.IdempotencyRecord{Key: "u1:booking.create:k", Payload: []byte("second"), OccurredAt: now}))

	clock = now.Add(30 * time.Minute)
	rec, ok, err := s.Get(ctx, "u1:booking.create:k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", string(rec.Payload))

	clock = now.Add(2 * time.Hour)
	_, ok, err = s.Get(ctx, "u1:booking.create:k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInboxSeenAndForget(t *testing.T) {
	ctx := context.Background()
	in := NewInbox()

	seen, err := in.Seen(ctx, "e1")
	require.NoError(t, err)
	assert.False(t, seen)
	seen, _ = in.Seen(ctx, "e1")
	assert.True(t, seen)

	require.NoError(t, in.Forget(ctx, "e1"))
	seen, _ = in.Seen(ctx, "e1")
	assert.False(t, seen)
}
