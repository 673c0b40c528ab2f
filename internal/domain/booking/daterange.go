package booking

import (
	"errors"
	"time"

	"hotelbooking/internal/domain/shared/daterange"
)

var ErrCheckInInPast = errors.New("booking: check-in date is in the past")

// ValidateStay checks the range itself and that check-in is today or later,
// both compared as UTC calendar days. A same-day check-in stays valid for the
// whole of that day.
func ValidateStay(dr daterange.DateRange, now time.Time) error {
	if err := dr.Validate(); err != nil {
		return err
	}
	today := daterange.StartOfDay(now)
	if checkIn := daterange.StartOfDay(dr.CheckIn); checkIn.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}
