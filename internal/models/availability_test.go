package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekFixture() WeeklyAvailability {
	return WeeklyAvailability{
		{Day: "Monday", Slots: []string{"10:00 AM", "12:00 PM"}},
		{Day: "Wednesday", Slots: []string{"4:00 PM"}},
		{Day: "Sunday", Slots: []string{}},
	}
}

func TestSlotsForMatchesWeekdayName(t *testing.T) {
	a := weekFixture()

	// 2026-09-07 is a Monday.
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"10:00 AM", "12:00 PM"}, a.SlotsFor(monday))

	// Wednesday two days later.
	assert.Equal(t, []string{"4:00 PM"}, a.SlotsFor(monday.AddDate(0, 0, 2)))

	// Sunday is declared with no slots.
	assert.Empty(t, a.SlotsFor(monday.AddDate(0, 0, 6)))

	// Tuesday is absent from the schedule entirely.
	assert.Nil(t, a.SlotsFor(monday.AddDate(0, 0, 1)))
}

func TestHasAnySlot(t *testing.T) {
	a := weekFixture()

	assert.True(t, a.HasAnySlot([]string{"4:00 PM"}))
	assert.True(t, a.HasAnySlot([]string{"9:00 PM", "10:00 AM"}))
	assert.False(t, a.HasAnySlot([]string{"9:00 PM"}))
	assert.False(t, a.HasAnySlot(nil))
	assert.False(t, WeeklyAvailability{}.HasAnySlot([]string{"10:00 AM"}))
}

func TestAvailabilityScanValueRoundTrip(t *testing.T) {
	a := weekFixture()

	value, err := a.Value()
	require.NoError(t, err)

	var decoded WeeklyAvailability
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, a, decoded)

	var fromString WeeklyAvailability
	require.NoError(t, fromString.Scan(`[{"day":"Friday","slots":["1:00 PM"]}]`))
	assert.Equal(t, "Friday", fromString[0].Day)

	var empty WeeklyAvailability
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)
}
