package pricing

import (
	"errors"
	"math"

	"hotelbooking/internal/domain/shared/daterange"
	"hotelbooking/internal/domain/shared/money"
)

var (
	ErrNonPositiveNights = errors.New("pricing: stay must be at least one night")
	ErrInvalidRoomCount  = errors.New("pricing: number of rooms must be at least 1")
	ErrNegativeRate      = errors.New("pricing: nightly rate cannot be negative")
	ErrNegativeTax       = errors.New("pricing: tax percent cannot be negative")
)

// TaxRates are percentages applied independently to the pre-tax total.
type TaxRates struct {
	VAT        float64 `json:"vat"`
	ServiceTax float64 `json:"serviceTax"`
	Other      float64 `json:"other"`
}

func (t TaxRates) Validate() error {
	if t.VAT < 0 || t.ServiceTax < 0 || t.Other < 0 {
		return ErrNegativeTax
	}
	return nil
}

// TaxAmounts holds currency amounts, not percentages.
type TaxAmounts struct {
	VAT        float64 `json:"vat"`
	ServiceTax float64 `json:"serviceTax"`
	Other      float64 `json:"other"`
}

// Breakdown is persisted with a booking and never recomputed from live room settings.
type Breakdown struct {
	Nights      int        `json:"nights"`
	NoOfRooms   int        `json:"noOfRooms"`
	NightlyRate float64    `json:"nightlyRate"`
	BasePrice   float64    `json:"basePrice"`
	Taxes       TaxAmounts `json:"taxes"`
	TotalTax    float64    `json:"totalTax"`
	TotalPrice  float64    `json:"totalPrice"`
	Currency    string     `json:"currency"`
}

// Input describes one stay quote.
type Input struct {
	BasePrice       float64
	DiscountedPrice float64
	Taxes           TaxRates
	Nights          int
	NoOfRooms       int
	Currency        string
}

// EffectiveNightlyRate prefers a positive discounted price.
func EffectiveNightlyRate(basePrice, discountedPrice float64) float64 {
	if discountedPrice > 0 {
		return discountedPrice
	}
	return basePrice
}

// Quote computes subtotal, itemized taxes and total for a stay.
func Quote(in Input) (Breakdown, error) {
	if in.Nights <= 0 {
		return Breakdown{}, ErrNonPositiveNights
	}
	if in.NoOfRooms < 1 {
		return Breakdown{}, ErrInvalidRoomCount
	}
	if in.BasePrice < 0 || in.DiscountedPrice < 0 || math.IsNaN(in.BasePrice) || math.IsNaN(in.DiscountedPrice) {
		return Breakdown{}, ErrNegativeRate
	}
	if err := in.Taxes.Validate(); err != nil {
		return Breakdown{}, err
	}

	currency := in.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	rate := EffectiveNightlyRate(in.BasePrice, in.DiscountedPrice)
	base := money.Money{Amount: rate, Currency: currency}.Times(in.Nights * in.NoOfRooms)
	vat := base.Percent(in.Taxes.VAT)
	service := base.Percent(in.Taxes.ServiceTax)
	other := base.Percent(in.Taxes.Other)
	totalTax := vat.Amount + service.Amount + other.Amount

	return Breakdown{
		Nights:      in.Nights,
		NoOfRooms:   in.NoOfRooms,
		NightlyRate: rate,
		BasePrice:   base.Amount,
		Taxes:       TaxAmounts{VAT: vat.Amount, ServiceTax: service.Amount, Other: other.Amount},
		TotalTax:    totalTax,
		TotalPrice:  base.Amount + totalTax,
		Currency:    currency,
	}, nil
}

// NightsFor counts whole nights of a range; non-positive counts are rejected.
func NightsFor(dr daterange.DateRange) (int, error) {
	nights := dr.Nights()
	if nights <= 0 {
		return 0, ErrNonPositiveNights
	}
	return nights, nil
}
