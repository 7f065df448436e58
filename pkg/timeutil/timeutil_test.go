package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSameDay(t *testing.T) {
	morning := time.Date(2025, 3, 10, 0, 30, 0, 0, AlmatyTZ)
	evening := time.Date(2025, 3, 10, 23, 45, 0, 0, AlmatyTZ)
	nextDay := time.Date(2025, 3, 11, 0, 5, 0, 0, AlmatyTZ)

	assert.True(t, IsSameDay(morning, evening))
	assert.False(t, IsSameDay(evening, nextDay))
}

func TestIsConsecutiveDay(t *testing.T) {
	d1 := time.Date(2025, 3, 10, 22, 0, 0, 0, AlmatyTZ)
	d2 := time.Date(2025, 3, 11, 6, 0, 0, 0, AlmatyTZ)
	d3 := time.Date(2025, 3, 12, 6, 0, 0, 0, AlmatyTZ)

	assert.True(t, IsConsecutiveDay(d1, d2))
	assert.False(t, IsConsecutiveDay(d1, d3))
	assert.False(t, IsConsecutiveDay(d2, d1))
}

func TestDaysBetween(t *testing.T) {
	d1 := time.Date(2025, 3, 10, 23, 0, 0, 0, AlmatyTZ)
	d2 := time.Date(2025, 3, 13, 1, 0, 0, 0, AlmatyTZ)

	assert.Equal(t, 3, DaysBetween(d1, d2))
	assert.Equal(t, 3, DaysBetween(d2, d1))
	assert.Equal(t, 0, DaysBetween(d1, d1))
}

func TestStartOfWeek(t *testing.T) {
	// Среда 12 марта 2025.
	wed := time.Date(2025, 3, 12, 15, 0, 0, 0, AlmatyTZ)
	monday := StartOfWeek(wed)

	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, 10, monday.Day())
	assert.Equal(t, 0, monday.Hour())

	// Воскресенье относится к уходящей неделе.
	sun := time.Date(2025, 3, 16, 2, 0, 0, 0, AlmatyTZ)
	assert.Equal(t, 10, StartOfWeek(sun).Day())
}

func TestWithinLastDays(t *testing.T) {
	ref := time.Date(2025, 3, 10, 12, 0, 0, 0, AlmatyTZ)

	assert.True(t, WithinLastDays(ref, ref, 7))
	assert.True(t, WithinLastDays(ref.AddDate(0, 0, -6), ref, 7))
	assert.False(t, WithinLastDays(ref.AddDate(0, 0, -7), ref, 7))
}
