package booking

import (
	"context"
	"fmt"
	"time"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/commands"
	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/locks"
	"hotelbooking/internal/app/middleware"
	"hotelbooking/internal/app/outbox"
	"hotelbooking/internal/app/policies"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
	domainroom "hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
)

const (
	UpdateBookingKey      = "booking.update"
	AdminUpdateBookingKey = "booking.admin_update"
)

// UpdateBookingCommand changes a stay. Nil/zero fields keep the current value.
type UpdateBookingCommand struct {
	BookingID string `validate:"required"`
	RoomID    string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    *int `validate:"omitempty,gte=1"`
	Children  *int `validate:"omitempty,gte=0"`
	NoOfRooms *int `validate:"omitempty,gte=1"`
}

func (c UpdateBookingCommand) Key() string { return UpdateBookingKey }

func (c UpdateBookingCommand) LockKeys() []string {
	keys := []string{locks.BookingKey(c.BookingID)}
	if c.RoomID != "" {
		keys = append(keys, locks.RoomKey(c.RoomID))
	}
	return keys
}

func (c UpdateBookingCommand) Permission() (string, string) { return "booking", "update" }

// AdminUpdateBookingCommand additionally sets the status through the transition table.
type AdminUpdateBookingCommand struct {
	UpdateBookingCommand
	Status string `validate:"omitempty,oneof=Pending Confirmed Cancelled pending confirmed cancelled"`
	Reason string
}

func (c AdminUpdateBookingCommand) Key() string { return AdminUpdateBookingKey }

func (c AdminUpdateBookingCommand) Permission() (string, string) { return "booking", "admin_update" }

type UpdateBookingHandler struct {
	Deps
}

func (h *UpdateBookingHandler) Handle(ctx context.Context, cmd UpdateBookingCommand) (*BookingResult, error) {
	return h.apply(ctx, cmd, "", "")
}

// AdminUpdateBookingHandler shares the update path.
type AdminUpdateBookingHandler struct {
	Update *UpdateBookingHandler
}

func (h *AdminUpdateBookingHandler) Handle(ctx context.Context, cmd AdminUpdateBookingCommand) (*BookingResult, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	return h.Update.apply(ctx, cmd.UpdateBookingCommand, cmd.Status, cmd.Reason)
}

func (h *UpdateBookingHandler) apply(ctx context.Context, cmd UpdateBookingCommand, rawStatus, reason string) (*BookingResult, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	var target domainbooking.Status
	if rawStatus != "" {
		if target, err = domainbooking.ParseStatus(rawStatus); err != nil {
			return nil, err
		}
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

		prev := b.Stay()
		next, err := mergeStay(prev, cmd)
		if err != nil {
			return err
		}
		var touched []*domainroom.Room
		var room *domainroom.Room
		if stayChanged(prev, next) {
			if b.Status == domainbooking.StatusCancelled {
				return domainbooking.ErrAlreadyCancelled
			}
			if !next.Range.Equal(prev.Range) {
				if err := domainbooking.ValidateStay(next.Range, now); err != nil {
					return err
				}
			}
			touched, room, err = h.reschedule(ctx, unit, b, prev, next, now)
			if err != nil {
				return err
			}
		}

		cancelled := false
		if target != "" {
			from := b.Status
			if err := b.SetStatus(target, reason, now); err != nil {
				return err
			}
			if target == domainbooking.StatusCancelled && from != domainbooking.StatusCancelled {
				cancelled = true
				if room == nil {
					if room, err = unit.Rooms().ByID(ctx, b.RoomID); err != nil {
						return err
					}
					touched = append(touched, room)
				}
			}
		}
		cause := domainroom.ReasonReschedule
		if cancelled {
			cause = domainroom.ReasonRelease
		}
		for _, r := range touched {
			if err := holdFor(ctx, unit, r, b, cause, now); err != nil {
				return err
			}
		}

		if err := unit.Bookings().Save(ctx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		for _, r := range touched {
			if err := unit.Rooms().Save(ctx, r); err != nil {
				return fmt.Errorf("save room: %w", err)
			}
		}

		committed := policies.Committed{
			Receipt: receiptFor(b, room, now),
			Ledger:  ledgerEntries(touched...),
		}
		if cancelled {
			committed.Notice = noticeFor(policies.NoticeCancellation, b, room, lookupContact(ctx, unit.Users(), b.UserID))
		}
		sources := []outbox.EventSource{b}
		for _, r := range touched {
			sources = append(sources, r)
		}
		if err := h.record(ctx, committed, sources...); err != nil {
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

// reschedule re-admits the stay without the booking's own reservation and
// reprices it. It returns every room whose counter must be recomputed and the
// room now holding the booking.
func (h *UpdateBookingHandler) reschedule(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking, prev, next domainbooking.Stay, now time.Time) ([]*domainroom.Room, *domainroom.Room, error) {
	target, err := Admit(ctx, unit, AdmissionRequest{
		RoomID:    next.RoomID,
		Range:     next.Range,
		Guests:    next.Guests,
		Children:  next.Children,
		NoOfRooms: next.NoOfRooms,
		Exclude:   b.ID,
	})
	if err != nil {
		return nil, nil, err
	}
	touched := []*domainroom.Room{target}
	if next.RoomID != prev.RoomID {
		if err := target.CanAcceptSwap(); err != nil {
			return nil, nil, err
		}
		old, err := unit.Rooms().ByID(ctx, prev.RoomID)
		if err != nil {
			return nil, nil, err
		}
		touched = append(touched, old)
	}

	if next.RoomID != prev.RoomID || !next.Range.Equal(prev.Range) || next.NoOfRooms != prev.NoOfRooms {
		price, err := Quote(target, next.Range, next.NoOfRooms)
		if err != nil {
			return nil, nil, err
		}
		next.Price = price
	}
	if err := b.Reschedule(next, now); err != nil {
		return nil, nil, err
	}
	return touched, target, nil
}

func mergeStay(prev domainbooking.Stay, cmd UpdateBookingCommand) (domainbooking.Stay, error) {
	next := prev
	if cmd.RoomID != "" {
		next.RoomID = domainroom.ID(cmd.RoomID)
	}
	if !cmd.CheckIn.IsZero() || !cmd.CheckOut.IsZero() {
		in, out := prev.Range.CheckIn, prev.Range.CheckOut
		if !cmd.CheckIn.IsZero() {
			in = cmd.CheckIn
		}
		if !cmd.CheckOut.IsZero() {
			out = cmd.CheckOut
		}
		dr, err := daterange.New(in, out)
		if err != nil {
			return domainbooking.Stay{}, err
		}
		next.Range = dr
	}
	if cmd.Guests != nil {
		next.Guests = *cmd.Guests
	}
	if cmd.Children != nil {
		next.Children = *cmd.Children
	}
	if cmd.NoOfRooms != nil {
		next.NoOfRooms = *cmd.NoOfRooms
	}
	return next, domainbooking.ValidateCounts(next.Guests, next.Children, next.NoOfRooms)
}

func stayChanged(prev, next domainbooking.Stay) bool {
	return prev.RoomID != next.RoomID ||
		!prev.Range.Equal(next.Range) ||
		prev.Guests != next.Guests ||
		prev.Children != next.Children ||
		prev.NoOfRooms != next.NoOfRooms
}

var _ commands.Handler[UpdateBookingCommand, *BookingResult] = (*UpdateBookingHandler)(nil)
var _ commands.Handler[AdminUpdateBookingCommand, *BookingResult] = (*AdminUpdateBookingHandler)(nil)
var _ middleware.LockingCommand = UpdateBookingCommand{}
var _ middleware.LockingCommand = AdminUpdateBookingCommand{}
