package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"hotelbooking/internal/domain/booking"
	"hotelbooking/internal/domain/room"
	"hotelbooking/internal/domain/shared/daterange"
)

var (
	ErrInvalidWindow  = errors.New("inventory: calendar window must be between 1 and 731 days")
	ErrInvalidWeekday = errors.New("inventory: unknown weekday")
)

// MaxCalendarDays bounds one calendar request.
const MaxCalendarDays = 731

// Reservation is the inventory footprint of one non-cancelled booking.
type Reservation struct {
	BookingID booking.ID
	Range     daterange.DateRange
	Units     int
}

// Reservations keeps active bookings and drops the one being modified.
func Reservations(bookings []*booking.Booking, exclude booking.ID) []Reservation {
	out := make([]Reservation, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.Active() {
			continue
		}
		if exclude != "" && b.ID == exclude {
			continue
		}
		out = append(out, Reservation{BookingID: b.ID, Range: b.Range, Units: b.NoOfRooms})
	}
	return out
}

// BookedOn sums units of reservations with ci <= day < co.
func BookedOn(reservations []Reservation, day time.Time) int {
	day = daterange.StartOfDay(day)
	total := 0
	for _, r := range reservations {
		if r.Range.ContainsDate(day) {
			total += r.Units
		}
	}
	return total
}

// AvailableOn never reports a negative count.
func AvailableOn(totalSlots int, reservations []Reservation, day time.Time) int {
	available := totalSlots - BookedOn(reservations, day)
	if available < 0 {
		return 0
	}
	return available
}

// MinAvailable is the smallest per-night availability across the stay.
func MinAvailable(totalSlots int, reservations []Reservation, stay daterange.DateRange) int {
	if totalSlots <= 0 {
		return 0
	}
	lowest := totalSlots
	for _, day := range stay.Days() {
		if available := AvailableOn(totalSlots, reservations, day); available < lowest {
			lowest = available
		}
	}
	return lowest
}

// Admit rejects a stay that would exceed the room's inventory on any night.
func Admit(r *room.Room, reservations []Reservation, stay daterange.DateRange, units int) error {
	if units < 1 {
		return room.ErrInvalidUnits
	}
	available := MinAvailable(r.TotalSlots, reservations, stay)
	if units > available {
		return room.InsufficientInventoryError{Available: available}
	}
	return nil
}

// WeekendDays are the nights priced with the weekend override.
type WeekendDays []time.Weekday

var DefaultWeekend = WeekendDays{time.Friday, time.Saturday}

func (w WeekendDays) Contains(day time.Time) bool {
	wd := day.UTC().Weekday()
	for _, d := range w {
		if d == wd {
			return true
		}
	}
	return false
}

func (w WeekendDays) String() string {
	parts := make([]string, 0, len(w))
	for _, d := range w {
		parts = append(parts, d.String()[:3])
	}
	return strings.Join(parts, ",")
}

// ParseWeekendDays accepts a comma separated list such as "Fri,Sat".
func ParseWeekendDays(raw string) (WeekendDays, error) {
	var out WeekendDays
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if part == name || (len(part) >= 3 && strings.HasPrefix(name, part)) {
				out = append(out, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, part)
		}
	}
	return out, nil
}

type Day struct {
	Date        time.Time `json:"date"`
	Available   int       `json:"available"`
	Booked      int       `json:"booked"`
	Price       float64   `json:"price"`
	Weekend     bool      `json:"weekend"`
	FullyBooked bool      `json:"fullyBooked"`
}

type Stats struct {
	TotalDays           int     `json:"totalDays"`
	FullyBookedDays     int     `json:"fullyBookedDays"`
	AvailableDays       int     `json:"availableDays"`
	AverageAvailability float64 `json:"averageAvailability"`
	MinAvailable        int     `json:"minAvailable"`
	OccupancyRate       float64 `json:"occupancyRate"`
}

type Calendar struct {
	RoomID   room.ID
	From     time.Time
	To       time.Time
	Currency string
	Days     []Day
	Stats    Stats
}

// BuildCalendar renders a dense per-day series starting at from.
func BuildCalendar(r *room.Room, reservations []Reservation, from time.Time, days int, weekend WeekendDays) (Calendar, error) {
	if days < 1 || days > MaxCalendarDays {
		return Calendar{}, ErrInvalidWindow
	}
	start := daterange.StartOfDay(from)
	cal := Calendar{
		RoomID:   r.ID,
		From:     start,
		To:       start.Add(time.Duration(days) * daterange.Day),
		Currency: r.Currency,
		Days:     make([]Day, 0, days),
	}

	sumAvailable := 0
	bookedUnits := 0
	cal.Stats.MinAvailable = -1
	for i := 0; i < days; i++ {
		date := start.Add(time.Duration(i) * daterange.Day)
		booked := BookedOn(reservations, date)
		available := AvailableOn(r.TotalSlots, reservations, date)
		isWeekend := weekend.Contains(date)
		day := Day{
			Date:        date,
			Available:   available,
			Booked:      booked,
			Price:       r.PriceOn(isWeekend),
			Weekend:     isWeekend,
			FullyBooked: available == 0,
		}
		cal.Days = append(cal.Days, day)

		sumAvailable += available
		bookedUnits += booked
		if day.FullyBooked {
			cal.Stats.FullyBookedDays++
		} else {
			cal.Stats.AvailableDays++
		}
		if cal.Stats.MinAvailable < 0 || available < cal.Stats.MinAvailable {
			cal.Stats.MinAvailable = available
		}
	}
	cal.Stats.TotalDays = days
	cal.Stats.AverageAvailability = float64(sumAvailable) / float64(days)
	if r.TotalSlots > 0 {
		rate := float64(bookedUnits) / float64(r.TotalSlots*days)
		if rate > 1 {
			rate = 1
		}
		cal.Stats.OccupancyRate = rate
	}
	return cal, nil
}

// Drift compares the room's running counter with the booking set.
type Drift struct {
	RoomID   room.ID `json:"roomId"`
	Recorded int     `json:"recordedBookedSlots"`
	Expected int     `json:"expectedBookedSlots"`
	InSync   bool    `json:"inSync"`
}

// PeakHeld is the largest number of units booked on any night from today on.
// Stays that share a turnover day never count together.
func PeakHeld(bookings []*booking.Booking, now time.Time) int {
	today := daterange.StartOfDay(now)
	type edge struct {
		at    time.Time
		units int
	}
	var edges []edge
	for _, b := range bookings {
		if b == nil || !b.Active() || !b.Range.CheckOut.After(today) {
			continue
		}
		from := b.Range.CheckIn
		if from.Before(today) {
			from = today
		}
		edges = append(edges, edge{at: from, units: b.NoOfRooms}, edge{at: b.Range.CheckOut, units: -b.NoOfRooms})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at.Equal(edges[j].at) {
			return edges[i].units < edges[j].units
		}
		return edges[i].at.Before(edges[j].at)
	})
	held, peak := 0, 0
	for _, e := range edges {
		held += e.units
		if held > peak {
			peak = held
		}
	}
	return peak
}

func CheckDrift(r *room.Room, bookings []*booking.Booking, now time.Time) Drift {
	expected := PeakHeld(bookings, now)
	return Drift{
		RoomID:   r.ID,
		Recorded: r.BookedSlots,
		Expected: expected,
		InSync:   expected == r.BookedSlots,
	}
}

// Reconcile rewrites the counter from the booking set and returns the drift observed before the fix.
func Reconcile(r *room.Room, bookings []*booking.Booking, now time.Time) Drift {
	drift := CheckDrift(r, bookings, now)
	if !drift.InSync {
		// A peak above totalSlots is left unapplied and stays reported.
		_ = r.Hold(drift.Expected, "reconcile", room.ReasonReconcile, now)
	}
	return drift
}
