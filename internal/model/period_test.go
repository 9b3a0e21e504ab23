package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodIndexRoundTrip(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		index int
	}{
		{2024, time.January, 2024*12 + 1},
		{2024, time.December, 2024*12 + 12},
		{1999, time.June, 1999*12 + 6},
	}
	for _, tt := range tests {
		p := Period{Year: tt.year, Month: tt.month}
		assert.Equal(t, tt.index, p.Index())
		assert.Equal(t, p, PeriodFromIndex(tt.index))
	}
}

func TestPeriodNext(t *testing.T) {
	assert.Equal(t, Period{2024, time.April}, Period{2024, time.March}.Next())
	assert.Equal(t, Period{2025, time.January}, Period{2024, time.December}.Next())
}

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-02", p.String())
	assert.Equal(t, 29, p.DaysIn())

	for _, m := range []int{0, 13, -1} {
		_, err := NewPeriod(2024, m)
		assert.ErrorIs(t, err, ErrInvalid, "month %d", m)
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2023-11")
	require.NoError(t, err)
	assert.Equal(t, Period{2023, time.November}, p)
	assert.Equal(t, "November 2023", p.Label())

	_, err = ParsePeriod("2023-13")
	assert.Error(t, err)
	_, err = ParsePeriod("nov 2023")
	assert.Error(t, err)
}

func TestPeriodContains(t *testing.T) {
	p := Period{2024, time.March}
	assert.True(t, p.Contains(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)))
}
