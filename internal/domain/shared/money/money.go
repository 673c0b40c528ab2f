// Package money carries room rates and booking totals with their currency.
// Amounts stay float64 end to end; rounding to two places happens only when a
// total is rendered for a guest.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNegativeAmount   = errors.New("money: amount cannot be negative")
)

// DefaultCurrency applies to rooms created without one.
const DefaultCurrency = "INR"

type Money struct {
	Amount   float64
	Currency string
}

// NormalizeCurrency upper-cases a three letter code; empty means DefaultCurrency.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency, nil
	}
	if len(code) != 3 {
		return "", ErrInvalidCurrency
	}
	return code, nil
}

func New(amount float64, currency string) (Money, error) {
	code, err := NormalizeCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, ErrNegativeAmount
	}
	return Money{Amount: amount, Currency: code}, nil
}

// Must is New for literals known to be valid.
func Must(amount float64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Times scales a nightly rate by nights × rooms.
func (m Money) Times(n int) Money {
	return Money{Amount: m.Amount * float64(n), Currency: m.Currency}
}

// Percent is a tax line: percent/100 of the amount.
func (m Money) Percent(percent float64) Money {
	return Money{Amount: (percent / 100) * m.Amount, Currency: m.Currency}
}

func (m Money) Fixed() string { return Fixed(m.Amount) }

// Fixed renders an amount with two decimals.
func Fixed(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
