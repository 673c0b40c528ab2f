package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/domain/pricing"
)

var now = time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

func newDeluxe(t *testing.T, slots int) *Room {
	t.Helper()
	r, err := NewRoom(CreateParams{
		ID:           "room-1",
		Name:         "deluxe",
		Price:        1000,
		Taxes:        pricing.TaxRates{VAT: 10, ServiceTax: 5},
		MaxOccupancy: 2,
		TotalSlots:   slots,
		Now:          now,
	})
	require.NoError(t, err)
	return r
}

func TestNewRoomNormalizes(t *testing.T) {
	r := newDeluxe(t, 5)
	assert.Equal(t, CategoryDeluxe, r.Name)
	assert.Equal(t, "INR", r.Currency)
	assert.Equal(t, 5, r.AvailableSlots)
	assert.True(t, r.IsAvailable)
	require.Len(t, r.PendingEvents(), 1)

	_, err := NewRoom(CreateParams{ID: "x", Name: "Penthouse", Price: 1, MaxOccupancy: 1})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	empty := newDeluxe(t, 0)
	assert.False(t, empty.IsAvailable)
}

func TestHoldTracksCounters(t *testing.T) {
	r := newDeluxe(t, 5)
	r.ClearEvents()
	require.NoError(t, r.Hold(3, "b-1", ReasonReserve, now))
	assert.Equal(t, 3, r.BookedSlots)
	assert.Equal(t, 2, r.AvailableSlots)
	require.Len(t, r.PendingEvents(), 1)
	changed := r.PendingEvents()[0].(InventoryChanged)
	assert.Equal(t, 3, changed.Delta)
	assert.Equal(t, ReasonReserve, changed.Reason)

	require.NoError(t, r.Hold(3, "b-2", ReasonReserve, now))
	assert.Len(t, r.PendingEvents(), 1, "an unchanged peak records nothing")

	assert.ErrorIs(t, r.Hold(6, "b-3", ReasonReserve, now), ErrHeldOutOfRange)
	assert.ErrorIs(t, r.Hold(-1, "b-3", ReasonRelease, now), ErrHeldOutOfRange)
	assert.Equal(t, 3, r.BookedSlots)

	require.NoError(t, r.Hold(0, "b-1", ReasonRelease, now))
	assert.Equal(t, 5, r.AvailableSlots)
	assert.True(t, r.IsAvailable)
}

func TestHoldLastUnitFlipsAvailability(t *testing.T) {
	r := newDeluxe(t, 1)
	require.NoError(t, r.Hold(1, "b-1", ReasonReserve, now))
	assert.False(t, r.IsAvailable)
	assert.ErrorIs(t, r.CanAcceptSwap(), ErrUnavailable)
}

func TestInsufficientInventoryMessage(t *testing.T) {
	err := error(InsufficientInventoryError{Available: 2})
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Equal(t, "Only 2 rooms are available for the selected dates", err.Error())
	assert.Equal(t, "No rooms are available for the selected dates", InsufficientInventoryError{}.Error())
}

func TestOccupancyScalesWithUnits(t *testing.T) {
	r := newDeluxe(t, 5)
	err := r.CheckOccupancy(3, 1)
	assert.ErrorIs(t, err, ErrExceedsMaxOccupancy)
	assert.NoError(t, r.CheckOccupancy(4, 2))
}

func TestRatingsAverage(t *testing.T) {
	r := newDeluxe(t, 1)
	assert.Equal(t, 0.0, r.AverageRating())
	require.NoError(t, r.Rate("u1", 4, now))
	require.NoError(t, r.Rate("u1", 5, now))
	require.NoError(t, r.Rate("u2", 0, now))
	assert.InDelta(t, 3.0, r.AverageRating(), 1e-9)
	assert.ErrorIs(t, r.Rate("u3", 6, now), ErrInvalidRating)
}

func TestPriceOnWeekend(t *testing.T) {
	r := newDeluxe(t, 1)
	r.DiscountedPrice = 800
	assert.Equal(t, 800.0, r.PriceOn(true))
	r.WeekendPrice = 1500
	assert.Equal(t, 1500.0, r.PriceOn(true))
	assert.Equal(t, 800.0, r.PriceOn(false))
}
