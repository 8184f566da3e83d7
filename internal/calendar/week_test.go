package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, time.UTC)
}

func TestStartOfWeekAlwaysMonday(t *testing.T) {
	for d := date(2023, time.December, 18, 15, 30); d.Before(date(2024, time.March, 18, 0, 0)); d = d.AddDate(0, 0, 1) {
		start := StartOfWeek(d)
		require.Equal(t, time.Monday, start.Weekday(), d.String())
		assert.Equal(t, d.Weekday() == time.Monday, IsSameDay(start, d), d.String())
		h, m, s := start.Clock()
		assert.Zero(t, h+m+s+start.Nanosecond())
		assert.False(t, start.After(d))
		assert.True(t, d.Sub(start) < 7*24*time.Hour)
	}
}

func TestStartOfWeekBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"sunday belongs to previous monday", date(2024, time.January, 21, 10, 0), date(2024, time.January, 15, 0, 0)},
		{"month rollover", date(2024, time.March, 3, 8, 0), date(2024, time.February, 26, 0, 0)},
		{"year rollover", date(2023, time.January, 1, 12, 0), date(2022, time.December, 26, 0, 0)},
		{"monday stays", date(2024, time.January, 1, 23, 59), date(2024, time.January, 1, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.want.Equal(StartOfWeek(tc.in)), StartOfWeek(tc.in).String())
		})
	}
}

func TestEndOfWeek(t *testing.T) {
	end := EndOfWeek(date(2024, time.January, 17, 9, 0))
	want := time.Date(2024, time.January, 21, 23, 59, 59, 999000000, time.UTC)
	assert.True(t, want.Equal(end), end.String())

	end = EndOfWeek(date(2024, time.December, 31, 9, 0))
	assert.Equal(t, 2025, end.Year())
	assert.Equal(t, time.January, end.Month())
	assert.Equal(t, 5, end.Day())
}

func TestWeekDaysMatchesWeekBounds(t *testing.T) {
	for d := date(2023, time.December, 1, 7, 0); d.Before(date(2024, time.February, 1, 0, 0)); d = d.AddDate(0, 0, 1) {
		days := WeekDays(StartOfWeek(d))
		require.Len(t, days, 7)
		for i := 1; i < len(days); i++ {
			assert.True(t, days[i].After(days[i-1]))
		}
		assert.True(t, IsSameDay(days[6], EndOfWeek(d)))
		assert.True(t, days[0].Equal(StartOfWeek(d)))
	}
}

func TestWeekDaysKeepsTimeOfDay(t *testing.T) {
	days := WeekDays(date(2024, time.February, 26, 9, 30))
	require.Len(t, days, 7)
	assert.Equal(t, time.March, days[6].Month())
	assert.Equal(t, 3, days[6].Day())
	for _, d := range days {
		assert.Equal(t, 9, d.Hour())
		assert.Equal(t, 30, d.Minute())
	}
}

func TestWeekNumber(t *testing.T) {
	assert.Equal(t, 1, WeekNumber(date(2024, time.January, 1, 0, 0)))
	assert.Equal(t, 29, WeekNumber(date(2024, time.July, 15, 0, 0)))
	assert.Greater(t, WeekNumber(date(2024, time.July, 15, 0, 0)), 28)

	// Anchored to the Thursday's year rather than the date's own year.
	assert.Equal(t, 53, WeekNumber(date(2021, time.January, 1, 0, 0)))
	assert.Equal(t, 1, WeekNumber(date(2024, time.December, 30, 0, 0)))
	assert.Equal(t, 52, WeekNumber(date(2023, time.January, 1, 0, 0)))
}

func TestWeekNumberMatchesISOWeek(t *testing.T) {
	for d := date(2019, time.December, 20, 12, 0); d.Before(date(2027, time.January, 10, 0, 0)); d = d.AddDate(0, 0, 1) {
		_, want := d.ISOWeek()
		require.Equal(t, want, WeekNumber(d), d.String())
	}
}

func TestWeekNumberAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	for d := time.Date(2024, time.January, 1, 12, 0, 0, 0, loc); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		_, want := d.ISOWeek()
		require.Equal(t, want, WeekNumber(d), d.String())
	}
}

func TestNewWeekInfo(t *testing.T) {
	info := NewWeekInfo(date(2025, time.January, 1, 10, 0))
	assert.Equal(t, 2024, info.Year)
	assert.Equal(t, 1, info.WeekNumber)
	assert.True(t, info.StartDate.Equal(date(2024, time.December, 30, 0, 0)))
	assert.Equal(t, 5, info.EndDate.Day())
	require.Len(t, info.Days, 7)
	assert.True(t, info.Days[0].Equal(info.StartDate))
	assert.True(t, IsSameDay(info.Days[6], info.EndDate))
}

func TestWeekInfoNavigation(t *testing.T) {
	info := NewWeekInfo(date(2024, time.December, 25, 10, 0))
	next := info.Next()
	assert.True(t, next.StartDate.Equal(date(2024, time.December, 30, 0, 0)))
	assert.Equal(t, 1, next.WeekNumber)
	assert.True(t, next.Prev().StartDate.Equal(info.StartDate))
	assert.Equal(t, 52, info.WeekNumber)
}

func TestIsDateInWeek(t *testing.T) {
	week := NewWeekInfo(date(2024, time.January, 17, 0, 0))
	assert.True(t, IsDateInWeek(date(2024, time.January, 15, 0, 0), week))
	assert.True(t, IsDateInWeek(date(2024, time.January, 21, 23, 59), week))
	assert.False(t, IsDateInWeek(date(2024, time.January, 14, 23, 59), week))
	assert.False(t, IsDateInWeek(date(2024, time.January, 22, 0, 0), week))
	assert.True(t, week.Contains(date(2024, time.January, 18, 12, 0)))
}

func TestIsSameDayAndToday(t *testing.T) {
	assert.True(t, IsSameDay(date(2024, time.May, 5, 0, 0), date(2024, time.May, 5, 23, 59)))
	assert.False(t, IsSameDay(date(2024, time.May, 5, 0, 0), date(2023, time.May, 5, 0, 0)))
	assert.True(t, IsTodayAt(date(2024, time.May, 5, 1, 0), date(2024, time.May, 5, 22, 0)))
	assert.False(t, IsTodayAt(date(2024, time.May, 6, 1, 0), date(2024, time.May, 5, 22, 0)))
	assert.True(t, IsToday(time.Now()))
}

func TestAddWeeksRoundTrip(t *testing.T) {
	base := date(2024, time.February, 29, 13, 45)
	for n := -60; n <= 60; n++ {
		shifted := AddWeeks(base, n)
		assert.True(t, IsSameDay(base, AddWeeks(shifted, -n)), "n=%d", n)
		assert.Equal(t, base.Weekday(), shifted.Weekday())
	}
	assert.True(t, AddWeeks(date(2024, time.December, 27, 8, 0), 1).Equal(date(2025, time.January, 3, 8, 0)))
}

func TestAddWeeksKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	before := time.Date(2024, time.March, 4, 9, 0, 0, 0, loc)
	after := AddWeeks(before, 1)
	assert.Equal(t, 9, after.Hour())
	assert.Equal(t, 11, after.Day())
}

func TestMondayIndex(t *testing.T) {
	assert.Equal(t, 0, MondayIndex(time.Monday))
	assert.Equal(t, 5, MondayIndex(time.Saturday))
	assert.Equal(t, 6, MondayIndex(time.Sunday))
	assert.Equal(t, 7, ISOWeekday(time.Sunday))
	assert.Equal(t, 1, ISOWeekday(time.Monday))
}
