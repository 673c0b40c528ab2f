package booking

import (
	"context"
	"log/slog"
	"sort"

	"hotelbooking/internal/app/auth"
	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/uow"
	domainbooking "hotelbooking/internal/domain/booking"
)

const (
	GetBookingKey     = "booking.get"
	ListMyBookingsKey = "booking.list_mine"
)

type GetBookingQuery struct {
	BookingID string `validate:"required"`
}

func (q GetBookingQuery) Key() string { return GetBookingKey }

func (q GetBookingQuery) Permission() (string, string) { return "booking", "read" }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingView, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return dto.BookingView{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	b, err := unit.Bookings().ByID(execCtx, domainbooking.ID(q.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	if !actor.CanAccess(b.UserID) {
		return dto.BookingView{}, auth.ErrForbidden
	}
	return dto.MapBooking(b), nil
}

// ListMyBookingsQuery lists the calling user's bookings, newest first.
type ListMyBookingsQuery struct {
	Status string `validate:"omitempty,oneof=Pending Confirmed Cancelled"`
}

func (q ListMyBookingsQuery) Key() string { return ListMyBookingsKey }

func (q ListMyBookingsQuery) Permission() (string, string) { return "booking", "read" }

type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) (dto.BookingCollection, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Bookings().ListByUser(execCtx, actor.UserID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	filtered := items[:0]
	for _, b := range items {
		if q.Status != "" && string(b.Status) != q.Status {
			continue
		}
		filtered = append(filtered, b)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if h.Logger != nil {
		h.Logger.Debug("bookings listed", "user_id", actor.UserID, "count", len(filtered))
	}
	return dto.MapBookings(filtered), nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingView] = (*GetBookingHandler)(nil)
var _ queries.Handler[ListMyBookingsQuery, dto.BookingCollection] = (*ListMyBookingsHandler)(nil)
