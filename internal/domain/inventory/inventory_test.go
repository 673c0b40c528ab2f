package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
)

var now = time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)

func testRoom(t *testing.T, slots int) *room.Room {
	t.Helper()
	r, err := room.NewRoom(room.CreateParams{ID: "r-1", Name: "Double", Price: 1000, DiscountedPrice: 900, WeekendPrice: 1400, MaxOccupancy: 2, TotalSlots: slots, Now: now})
	require.NoError(t, err)
	return r
}

func rng(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	require.NoError(t, err)
	return dr
}

func bk(t *testing.T, id string, in, out string, units int, status booking.Status) *booking.Booking {
	return &booking.Booking{ID: booking.ID(id), RoomID: "r-1", Range: rng(t, in, out), NoOfRooms: units, Status: status}
}

func TestCheckoutDayDoesNotConsumeInventory(t *testing.T) {
	res := Reservations([]*booking.Booking{
		bk(t, "a", "2030-03-10", "2030-03-12", 2, booking.StatusConfirmed),
	}, "")
	assert.Equal(t, 2, BookedOn(res, time.Date(2030, 3, 11, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, BookedOn(res, time.Date(2030, 3, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, MinAvailable(3, res, rng(t, "2030-03-12", "2030-03-14")))
}

func TestCancelledAndExcludedBookingsIgnored(t *testing.T) {
	all := []*booking.Booking{
		bk(t, "a", "2030-03-10", "2030-03-12", 2, booking.StatusCancelled),
		bk(t, "b", "2030-03-10", "2030-03-12", 1, booking.StatusPending),
	}
	assert.Len(t, Reservations(all, ""), 1)
	assert.Empty(t, Reservations(all, "b"))
}

func TestAdmitUsesPerNightMinimum(t *testing.T) {
	r := testRoom(t, 3)
	res := Reservations([]*booking.Booking{
		bk(t, "a", "2030-03-10", "2030-03-11", 1, booking.StatusConfirmed),
		bk(t, "b", "2030-03-12", "2030-03-13", 2, booking.StatusPending),
	}, "")
	stay := rng(t, "2030-03-10", "2030-03-14")
	assert.Equal(t, 1, MinAvailable(r.TotalSlots, res, stay))
	assert.NoError(t, Admit(r, res, stay, 1))

	err := Admit(r, res, stay, 2)
	require.ErrorIs(t, err, room.ErrInsufficientInventory)
	assert.Contains(t, err.Error(), "Only 1 room")
}

func TestAdmitZeroSlotsRoom(t *testing.T) {
	r := testRoom(t, 0)
	err := Admit(r, nil, rng(t, "2030-03-10", "2030-03-11"), 1)
	assert.ErrorIs(t, err, room.ErrInsufficientInventory)
}

func TestBuildCalendar(t *testing.T) {
	r := testRoom(t, 2)
	res := Reservations([]*booking.Booking{
		bk(t, "a", "2030-03-01", "2030-03-03", 2, booking.StatusConfirmed),
		bk(t, "b", "2030-03-02", "2030-03-04", 1, booking.StatusPending),
	}, "")

	cal, err := BuildCalendar(r, res, now, 7, DefaultWeekend)
	require.NoError(t, err)
	require.Len(t, cal.Days, 7)

	assert.Equal(t, 0, cal.Days[0].Available)
	assert.True(t, cal.Days[0].FullyBooked)
	assert.Equal(t, 3, cal.Days[1].Booked)
	assert.Equal(t, 0, cal.Days[1].Available)
	assert.Equal(t, 1, cal.Days[2].Available)
	assert.Equal(t, 2, cal.Days[3].Available)

	// 2030-03-01 is a Friday.
	assert.True(t, cal.Days[0].Weekend)
	assert.Equal(t, 1400.0, cal.Days[0].Price)
	assert.Equal(t, 900.0, cal.Days[2].Price)

	assert.Equal(t, 7, cal.Stats.TotalDays)
	assert.Equal(t, 2, cal.Stats.FullyBookedDays)
	assert.Equal(t, 5, cal.Stats.AvailableDays)
	assert.Equal(t, 0, cal.Stats.MinAvailable)
	assert.InDelta(t, 9.0/7.0, cal.Stats.AverageAvailability, 1e-9)

	_, err = BuildCalendar(r, nil, now, 0, DefaultWeekend)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestCalendarZeroSlotsAllUnavailable(t *testing.T) {
	cal, err := BuildCalendar(testRoom(t, 0), nil, now, 3, nil)
	require.NoError(t, err)
	for _, d := range cal.Days {
		assert.True(t, d.FullyBooked)
	}
	assert.Equal(t, 0.0, cal.Stats.OccupancyRate)
}

func TestParseWeekendDays(t *testing.T) {
	days, err := ParseWeekendDays("Fri, saturday")
	require.NoError(t, err)
	assert.Equal(t, WeekendDays{time.Friday, time.Saturday}, days)
	assert.Equal(t, "Fri,Sat", days.String())

	_, err = ParseWeekendDays("funday")
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestReconcileFixesDrift(t *testing.T) {
	r := testRoom(t, 5)
	require.NoError(t, r.Hold(4, "x", room.ReasonReserve, now))
	bookings := []*booking.Booking{
		bk(t, "a", "2030-03-01", "2030-03-03", 2, booking.StatusConfirmed),
		bk(t, "b", "2030-03-01", "2030-03-03", 1, booking.StatusCancelled),
		bk(t, "old", "2030-02-01", "2030-02-03", 1, booking.StatusConfirmed),
	}

	drift := CheckDrift(r, bookings, now)
	assert.False(t, drift.InSync)
	assert.Equal(t, 2, drift.Expected)
	assert.Equal(t, 4, drift.Recorded)

	Reconcile(r, bookings, now)
	assert.Equal(t, 2, r.BookedSlots)
	assert.Equal(t, 3, r.AvailableSlots)
	assert.True(t, CheckDrift(r, bookings, now).InSync)
}

func TestPeakHeldCountsNightsNotBookings(t *testing.T) {
	turnover := []*booking.Booking{
		bk(t, "a", "2030-03-05", "2030-03-07", 1, booking.StatusConfirmed),
		bk(t, "b", "2030-03-07", "2030-03-09", 1, booking.StatusPending),
		bk(t, "c", "2030-04-10", "2030-04-12", 1, booking.StatusPending),
	}
	assert.Equal(t, 1, PeakHeld(turnover, now))

	stacked := append(turnover, bk(t, "d", "2030-03-06", "2030-03-08", 2, booking.StatusPending))
	assert.Equal(t, 3, PeakHeld(stacked, now))

	// "in-house" started before today and still holds its unit tonight.
	past := []*booking.Booking{
		bk(t, "done", "2030-02-20", "2030-03-01", 4, booking.StatusConfirmed),
		bk(t, "in-house", "2030-02-27", "2030-03-02", 1, booking.StatusConfirmed),
		bk(t, "gone", "2030-03-05", "2030-03-06", 3, booking.StatusCancelled),
	}
	assert.Equal(t, 1, PeakHeld(past, now))
	assert.Equal(t, 0, PeakHeld(nil, now))
}
