package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: check-out must be after check-in")
	ErrInvalidDate  = errors.New("daterange: date must be formatted as YYYY-MM-DD or RFC3339")
)

// Day is the length of one night.
const Day = 24 * time.Hour

// DateLayout is the calendar date format accepted on the wire.
const DateLayout = "2006-01-02"

// DateRange represents a half-open interval [checkIn, checkOut) truncated to UTC day boundaries.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: StartOfDay(checkIn), CheckOut: StartOfDay(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two wire-format dates.
func Parse(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

// ParseDate accepts a plain calendar date or an RFC3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrInvalidDate
}

// StartOfDay drops the clock part of t in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns whole nights between the day-truncated endpoints.
func (dr DateRange) Nights() int {
	in := StartOfDay(dr.CheckIn)
	out := StartOfDay(dr.CheckOut)
	return int(out.Sub(in) / Day)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// Days lists the start of every night in the range.
func (dr DateRange) Days() []time.Time {
	nights := dr.Nights()
	if nights <= 0 {
		return nil
	}
	out := make([]time.Time, 0, nights)
	day := StartOfDay(dr.CheckIn)
	for i := 0; i < nights; i++ {
		out = append(out, day)
		day = day.Add(Day)
	}
	return out
}

func (dr DateRange) Equal(other DateRange) bool {
	return dr.CheckIn.Equal(other.CheckIn) && dr.CheckOut.Equal(other.CheckOut)
}
