package booking

import (
	"context"
	"fmt"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/locks"
	"hotelbooking/internal/app/middleware"
	"hotelbooking/internal/app/policies"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	domainroom "hotelbooking/internal/domain/room"
)

const CancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID string `validate:"required"`
	Reason    string `validate:"max=500"`
}

func (c CancelBookingCommand) Key() string { return CancelBookingKey }

func (c CancelBookingCommand) LockKeys() []string { return []string{locks.BookingKey(c.BookingID)} }

func (c CancelBookingCommand) Permission() (string, string) { return "booking", "cancel" }

type CancelBookingHandler struct {
	Deps
}

// Handle releases the booking's units exactly once; a repeat call fails with
// ErrAlreadyCancelled and leaves the counters untouched.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*BookingResult, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	now := h.now()

	var result *BookingResult
	err = handlersupport.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
		if err != nil {
			return err
		}
		if !actor.CanAccess(b.UserID) {
			return auth.ErrForbidden
		}
		if err := b.Cancel(cmd.Reason, now); err != nil {
			return err
		}
		room, err := unit.Rooms().ByID(ctx, b.RoomID)
		if err != nil {
			return err
		}
		if err := holdFor(ctx, unit, room, b, domainroom.ReasonRelease, now); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		if err := unit.Rooms().Save(ctx, room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}

		committed := policies.Committed{
			Notice:  noticeFor(policies.NoticeCancellation, b, room, lookupContact(ctx, unit.Users(), b.UserID)),
			Receipt: receiptFor(b, room, now),
			Ledger:  ledgerEntries(room),
		}
		if err := h.record(ctx, committed, b, room); err != nil {
			return err
		}
		result = &BookingResult{Booking: dto.MapBooking(b)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("booking cancelled", "booking_id", cmd.BookingID, "actor", actor.UserID)
	}
	return result, nil
}

var _ commands.Handler[CancelBookingCommand, *BookingResult] = (*CancelBookingHandler)(nil)
var _ middleware.LockingCommand = CancelBookingCommand{}
