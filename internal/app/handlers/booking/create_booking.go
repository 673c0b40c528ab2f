package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

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
	"hotelbooking/internal/domain/shared/daterange"
)

const CreateBookingKey = "booking.create"

type CreateBookingCommand struct {
	BookingID       string
	RoomID          string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	Guests          int       `validate:"gte=1"`
	Children        int       `validate:"gte=0"`
	NoOfRooms       int       `validate:"gte=1"`
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return CreateBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &BookingResult{} }

func (c CreateBookingCommand) LockKeys() []string { return []string{locks.RoomKey(c.RoomID)} }

func (c CreateBookingCommand) Permission() (string, string) { return "booking", "create" }

type CreateBookingHandler struct {
	Deps
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*BookingResult, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	if cmd.NoOfRooms == 0 {
		cmd.NoOfRooms = 1
	}
	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := domainbooking.ValidateStay(dr, now); err != nil {
		return nil, err
	}

	var result *BookingResult
	err = handlersupport.RunInUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		room, err := Admit(ctx, unit, AdmissionRequest{
			RoomID:    domainroom.ID(cmd.RoomID),
			Range:     dr,
			Guests:    cmd.Guests,
			Children:  cmd.Children,
			NoOfRooms: cmd.NoOfRooms,
		})
		if err != nil {
			return err
		}
		price, err := Quote(room, dr, cmd.NoOfRooms)
		if err != nil {
			return err
		}

		id := cmd.BookingID
		if id == "" {
			id = uuid.NewString()
		}
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:        domainbooking.ID(id),
			UserID:    actor.UserID,
			RoomID:    room.ID,
			Range:     dr,
			Guests:    cmd.Guests,
			Children:  cmd.Children,
			NoOfRooms: cmd.NoOfRooms,
			Price:     price,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := holdFor(ctx, unit, room, b, domainroom.ReasonReserve, now); err != nil {
			return err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}
		if err := unit.Rooms().Save(ctx, room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}
		guest, err := rememberContact(ctx, unit.Users(), actor, now)
		if err != nil {
			return fmt.Errorf("save contact: %w", err)
		}

		committed := policies.Committed{
			Notice:  noticeFor(policies.NoticeBookingConfirmation, b, room, guest),
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
		h.Logger.Info("booking created", "booking_id", result.Booking.ID, "room_id", cmd.RoomID, "rooms", cmd.NoOfRooms)
	}
	return result, nil
}

var _ commands.Handler[CreateBookingCommand, *BookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
var _ middleware.LockingCommand = CreateBookingCommand{}
