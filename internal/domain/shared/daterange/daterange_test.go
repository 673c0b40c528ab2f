package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsEmptyAndInvertedRanges(t *testing.T) {
	_, err := New(date(2030, 1, 5), date(2030, 1, 5))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(date(2030, 1, 6), date(2030, 1, 5))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(time.Time{}, date(2030, 1, 5))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestNightsTruncatesToDayBoundaries(t *testing.T) {
	checkIn := time.Date(2030, 3, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2030, 3, 3, 11, 0, 0, 0, time.UTC)

	dr, err := New(checkIn, checkOut)
	require.NoError(t, err)
	assert.Equal(t, 2, dr.Nights())
	assert.Equal(t, date(2030, 3, 1), dr.CheckIn)
}

func TestSameDayTimestampsCollapseToInvalidRange(t *testing.T) {
	_, err := New(time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC), time.Date(2030, 3, 1, 18, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestOverlapIsHalfOpen(t *testing.T) {
	first, err := New(date(2030, 1, 1), date(2030, 1, 3))
	require.NoError(t, err)
	sameDayTurnover, err := New(date(2030, 1, 3), date(2030, 1, 4))
	require.NoError(t, err)
	inside, err := New(date(2030, 1, 2), date(2030, 1, 5))
	require.NoError(t, err)

	assert.False(t, first.Overlaps(sameDayTurnover))
	assert.True(t, first.Overlaps(inside))
	assert.True(t, first.ContainsDate(date(2030, 1, 2)))
	assert.False(t, first.ContainsDate(date(2030, 1, 3)))
}

func TestParse(t *testing.T) {
	dr, err := Parse("2030-05-01", "2030-05-04T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 3, dr.Nights())
	assert.Len(t, dr.Days(), 3)

	_, err = Parse("not-a-date", "2030-05-04")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
