package calendar

import (
	"fmt"
	"time"
)

var dayNames = [DaysPerWeek]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DayName returns the three letter Monday-first abbreviation of d's weekday.
func DayName(d time.Time) string {
	return dayNames[MondayIndex(d.Weekday())]
}

// MonthName returns the English name of d's month.
func MonthName(d time.Time) string {
	return monthNames[d.Month()-1]
}

// FormatDayHeader renders the column header of a day, e.g. "MON 15".
func FormatDayHeader(d time.Time) string {
	return fmt.Sprintf("%s %d", DayName(d), d.Day())
}

// FormatHourLabel renders an hour row label on a 12-hour clock, e.g. "9:00 AM".
// Hours wrap modulo 24, so the closing hour 24 of a full-day grid reads "12:00 AM".
func FormatHourLabel(hour int) string {
	return formatClock(hour, 0)
}

// FormatClock renders the time-of-day of t on a 12-hour clock, e.g. "2:05 PM".
func FormatClock(t time.Time) string {
	return formatClock(t.Hour(), t.Minute())
}

func formatClock(hour, minute int) string {
	hour = ((hour % 24) + 24) % 24
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, period)
}
