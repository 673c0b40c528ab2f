package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/domain/shared/daterange"
)

func TestQuoteThreeRoomsTwoNights(t *testing.T) {
	got, err := Quote(Input{
		BasePrice: 1000,
		Taxes:     TaxRates{VAT: 10, ServiceTax: 5},
		Nights:    2,
		NoOfRooms: 3,
		Currency:  "INR",
	})
	require.NoError(t, err)

	assert.Equal(t, 6000.0, got.BasePrice)
	assert.Equal(t, 600.0, got.Taxes.VAT)
	assert.Equal(t, 300.0, got.Taxes.ServiceTax)
	assert.Equal(t, 0.0, got.Taxes.Other)
	assert.Equal(t, 900.0, got.TotalTax)
	assert.Equal(t, 6900.0, got.TotalPrice)
}

func TestQuoteUsesDiscountWhenPositive(t *testing.T) {
	got, err := Quote(Input{BasePrice: 1000, DiscountedPrice: 800, Taxes: TaxRates{Other: 2.5}, Nights: 1, NoOfRooms: 1})
	require.NoError(t, err)
	assert.Equal(t, 800.0, got.NightlyRate)
	assert.Equal(t, 20.0, got.Taxes.Other)
	assert.Equal(t, 820.0, got.TotalPrice)

	got, err = Quote(Input{BasePrice: 1000, DiscountedPrice: 0, Nights: 1, NoOfRooms: 1})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.NightlyRate)
	assert.Equal(t, 0.0, got.TotalTax)
}

func TestQuoteIsDeterministic(t *testing.T) {
	in := Input{BasePrice: 1234.56, DiscountedPrice: 999.99, Taxes: TaxRates{VAT: 12.5, ServiceTax: 7.3, Other: 0.1}, Nights: 7, NoOfRooms: 3}
	first, err := Quote(in)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		again, err := Quote(in)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestQuoteRejectsBadInput(t *testing.T) {
	_, err := Quote(Input{BasePrice: 100, Nights: 0, NoOfRooms: 1})
	assert.ErrorIs(t, err, ErrNonPositiveNights)

	_, err = Quote(Input{BasePrice: 100, Nights: 1, NoOfRooms: 0})
	assert.ErrorIs(t, err, ErrInvalidRoomCount)

	_, err = Quote(Input{BasePrice: 100, Nights: 1, NoOfRooms: 1, Taxes: TaxRates{VAT: -1}})
	assert.ErrorIs(t, err, ErrNegativeTax)
}

func TestNightsFor(t *testing.T) {
	dr := daterange.DateRange{
		CheckIn:  time.Date(2030, 1, 1, 23, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2030, 1, 4, 1, 0, 0, 0, time.UTC),
	}
	nights, err := NightsFor(dr)
	require.NoError(t, err)
	assert.Equal(t, 3, nights)

	_, err = NightsFor(daterange.DateRange{CheckIn: dr.CheckIn, CheckOut: dr.CheckIn})
	assert.ErrorIs(t, err, ErrNonPositiveNights)
}
