package booking

import (
	"context"
	"fmt"

	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/locks"
	"hotelbooking/internal/app/policies"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
)

const ConfirmBookingKey = "booking.confirm"

// ConfirmBookingCommand is issued when a payment for the booking settles.
type ConfirmBookingCommand struct {
	BookingID string `validate:"required"`
	Reference string
}

func (c ConfirmBookingCommand) Key() string { return ConfirmBookingKey }

func (c ConfirmBookingCommand) LockKeys() []string { return []string{locks.BookingKey(c.BookingID)} }

func (c ConfirmBookingCommand) Permission() (string, string) { return "booking", "confirm" }

type ConfirmBookingHandler struct {
	Deps
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*BookingResult, error) {
	now := h.now()
	var result *BookingResult
	err := handlersupport.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		b, err := unit.Bookings().ByID(ctx, domainbooking.ID(cmd.BookingID))
		if err != nil {
			return err
		}
		if b.Status == domainbooking.StatusConfirmed {
			result = &BookingResult{Booking: dto.MapBooking(b)}
			return nil
		}
		if err := b.Confirm(cmd.Reference, now); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		room, err := unit.Rooms().ByID(ctx, b.RoomID)
		if err != nil {
			return err
		}
		if err := h.record(ctx, policies.Committed{Receipt: receiptFor(b, room, now)}, b); err != nil {
			return err
		}
		result = &BookingResult{Booking: dto.MapBooking(b)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[ConfirmBookingCommand, *BookingResult] = (*ConfirmBookingHandler)(nil)
