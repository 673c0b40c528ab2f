package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/outbox"
	"hotelbooking/internal/app/policies"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/inventory"
	domainroom "hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/money"
	domainuser "hotelbooking/internal/domain/user"
)

// Deps is shared by the booking command handlers.
type Deps struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Effects    *policies.Effects
	Logger     *slog.Logger
	Now        func() time.Time
}

func (d Deps) now() time.Time {
	return handlersupport.Clock(d.Now)
}

// BookingResult is returned by every booking command.
type BookingResult struct {
	Booking dto.BookingView `json:"booking"`
}

// record moves pending events into the outbox and schedules post-commit effects.
func (d Deps) record(ctx context.Context, committed policies.Committed, aggregates ...outbox.EventSource) error {
	if err := outbox.RecordAggregates(ctx, d.Outbox, d.Encoder, aggregates...); err != nil {
		return err
	}
	if d.Effects != nil {
		uow.AfterCommit(ctx, func() { d.Effects.Dispatch(ctx, committed) })
	}
	return nil
}

// holdFor recomputes room's counter from its booking set, with b in its
// current, unsaved state.
func holdFor(ctx context.Context, unit uow.UnitOfWork, room *domainroom.Room, b *domainbooking.Booking, reason domainroom.InventoryReason, now time.Time) error {
	stored, err := unit.Bookings().ListByRoom(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("load room bookings: %w", err)
	}
	current := make([]*domainbooking.Booking, 0, len(stored)+1)
	for _, other := range stored {
		if other.ID != b.ID {
			current = append(current, other)
		}
	}
	if b.RoomID == room.ID {
		current = append(current, b)
	}
	return room.Hold(inventory.PeakHeld(current, now), string(b.ID), reason, now)
}

// ledgerEntries must run before the room's events are drained.
func ledgerEntries(rooms ...*domainroom.Room) []policies.LedgerEntry {
	var out []policies.LedgerEntry
	for _, r := range rooms {
		if r == nil {
			continue
		}
		for _, ev := range r.PendingEvents() {
			changed, ok := ev.(domainroom.InventoryChanged)
			if !ok {
				continue
			}
			out = append(out, policies.LedgerEntry{
				RoomID:    string(changed.RoomID),
				Reference: changed.Reference,
				Delta:     changed.Delta,
				Booked:    changed.Booked,
				Available: changed.Available,
				Reason:    string(changed.Reason),
				At:        changed.At,
			})
		}
	}
	return out
}

func receiptFor(b *domainbooking.Booking, room *domainroom.Room, now time.Time) *policies.Receipt {
	rec := &policies.Receipt{
		BookingID: string(b.ID),
		UserID:    b.UserID,
		RoomID:    string(b.RoomID),
		CheckIn:   b.Range.CheckIn,
		CheckOut:  b.Range.CheckOut,
		Guests:    b.Guests,
		Children:  b.Children,
		NoOfRooms: b.NoOfRooms,
		Status:    string(b.Status),
		Price:     b.Price,
		IssuedAt:  now,
	}
	if room != nil {
		rec.RoomName = string(room.Name)
	}
	return rec
}

func noticeFor(kind policies.NoticeKind, b *domainbooking.Booking, room *domainroom.Room, guest *domainuser.User) *policies.BookingNotice {
	notice := &policies.BookingNotice{
		Kind:       kind,
		BookingID:  string(b.ID),
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		TotalPrice: money.Fixed(b.Price.TotalPrice),
		Currency:   b.Price.Currency,
	}
	if room != nil {
		notice.RoomName = string(room.Name)
	}
	if guest != nil {
		notice.Email = guest.Email
		notice.Name = guest.DisplayName()
	} else {
		notice.Name = b.UserID
	}
	return notice
}

// rememberContact keeps the directory entry for actor current so later
// notifications reach the guest.
func rememberContact(ctx context.Context, users domainuser.Repository, actor auth.Actor, now time.Time) (*domainuser.User, error) {
	existing, err := users.ByID(ctx, domainuser.ID(actor.UserID))
	switch {
	case err == nil:
		if existing.UpdateContact(actor.Email, actor.Name, now) {
			if err := users.Save(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	case errors.Is(err, domainuser.ErrNotFound):
		created, err := domainuser.NewUser(domainuser.CreateParams{
			ID:        domainuser.ID(actor.UserID),
			Email:     actor.Email,
			Name:      actor.Name,
			Role:      actor.Role,
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		if err := users.Save(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	default:
		return nil, err
	}
}

// lookupContact is best effort; a missing entry only degrades the notice.
func lookupContact(ctx context.Context, users domainuser.Repository, id string) *domainuser.User {
	u, err := users.ByID(ctx, domainuser.ID(id))
	if err != nil {
		return nil
	}
	return u
}
