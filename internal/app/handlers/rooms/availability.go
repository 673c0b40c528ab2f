package rooms

import (
	"context"
	"time"

	"hotelbooking/internal/app/dto"
	handlersupport "hotelbooking/internal/app/handlers/support"
	"hotelbooking/internal/app/queries"
	"hotelbooking/internal/app/uow"
	"hotelbooking/internal/domain/inventory"
	domainroom "hotelbooking/internal/domain/room"
)

const (
	GetAvailabilityKey = "room.availability"

	// DefaultCalendarDays is roughly six months of nights.
	DefaultCalendarDays = 183
)

// GetAvailabilityQuery renders the per-day calendar. A zero From means today.
type GetAvailabilityQuery struct {
	RoomID string `validate:"required"`
	From   time.Time
	Days   int `validate:"gte=0,lte=731"`
}

func (q GetAvailabilityQuery) Key() string { return GetAvailabilityKey }

type GetAvailabilityHandler struct {
	UoWFactory  uow.UoWFactory
	Weekend     inventory.WeekendDays
	DefaultDays int
	Now         func() time.Time
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, q GetAvailabilityQuery) (dto.CalendarView, error) {
	now := handlersupport.Clock(h.Now)
	from := q.From
	if from.IsZero() {
		from = now
	}
	days := q.Days
	if days == 0 {
		days = h.DefaultDays
	}
	if days == 0 {
		days = DefaultCalendarDays
	}
	weekend := h.Weekend
	if weekend == nil {
		weekend = inventory.DefaultWeekend
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainroom.ID(q.RoomID))
	if err != nil {
		return dto.CalendarView{}, err
	}
	bookings, err := unit.Bookings().ListByRoom(execCtx, room.ID)
	if err != nil {
		return dto.CalendarView{}, err
	}
	cal, err := inventory.BuildCalendar(room, inventory.Reservations(bookings, ""), from, days, weekend)
	if err != nil {
		return dto.CalendarView{}, err
	}
	return dto.MapCalendar(cal, weekend, inventory.CheckDrift(room, bookings, now)), nil
}

var _ queries.Handler[GetAvailabilityQuery, dto.CalendarView] = (*GetAvailabilityHandler)(nil)
