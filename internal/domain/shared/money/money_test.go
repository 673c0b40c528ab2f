package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentAndFixed(t *testing.T) {
	base := Must(6000, "inr")
	assert.Equal(t, "INR", base.Currency)
	assert.Equal(t, 600.0, base.Percent(10).Amount)
	assert.Equal(t, 18000.0, base.Times(3).Amount)
	assert.Equal(t, "6900.00", Fixed(6900))
	assert.Equal(t, "33.33", Must(33.333, "INR").Fixed())
}

func TestAddRequiresSameCurrency(t *testing.T) {
	sum, err := Must(10, "INR").Add(Must(5.5, "INR"))
	require.NoError(t, err)
	assert.Equal(t, 15.5, sum.Amount)

	_, err = Must(10, "INR").Add(Must(1, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = New(-1, "INR")
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNormalizeCurrency(t *testing.T) {
	code, err := NormalizeCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", code)

	code, err = NormalizeCurrency("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, code)

	_, err = NormalizeCurrency("rupees")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
