// Package calendar holds the week-grid engine: week arithmetic, event queries,
// grid geometry and the helpers that turn form input into events.
//
// Every function works on the wall clock of the location carried by its
// time.Time arguments. Nothing here converts between locations.
package calendar

import (
	"time"
)

// DaysPerWeek is the number of columns on the week grid.
const DaysPerWeek = 7

// WeekInfo is an immutable snapshot of one Monday-first week.
type WeekInfo struct {
	WeekNumber int         `json:"week_number"`
	Year       int         `json:"year"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	Days       []time.Time `json:"days"`
}

// MondayIndex maps a weekday onto the Monday=0..Sunday=6 column index.
func MondayIndex(day time.Weekday) int {
	if day == time.Sunday {
		return 6
	}
	return int(day) - 1
}

// ISOWeekday maps a weekday onto Monday=1..Sunday=7.
func ISOWeekday(day time.Weekday) int {
	return MondayIndex(day) + 1
}

// StartOfDay returns d with its time-of-day zeroed.
func StartOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// DateAtHour returns the calendar day of d at hour:00:00.000.
// Hours outside 0-23 roll over into the neighbouring days.
func DateAtHour(d time.Time, hour int) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, hour, 0, 0, 0, d.Location())
}

// StartOfWeek returns the Monday of the week containing d, at midnight.
// Sunday is the last day of the week.
func StartOfWeek(d time.Time) time.Time {
	y, m, day := d.Date()
	offset := -MondayIndex(d.Weekday())
	return time.Date(y, m, day+offset, 0, 0, 0, 0, d.Location())
}

// EndOfWeek returns the Sunday of the week containing d at 23:59:59.999.
func EndOfWeek(d time.Time) time.Time {
	y, m, day := StartOfWeek(d).Date()
	return time.Date(y, m, day+6, 23, 59, 59, int(999*time.Millisecond), d.Location())
}

// WeekDays returns the seven consecutive days starting at start, each keeping
// the time-of-day of start.
func WeekDays(start time.Time) []time.Time {
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = addDays(start, i)
	}
	return days
}

// WeekNumber returns the ISO-style week number of d: d is moved to the Thursday
// of its week and the week is counted from January 1st of that Thursday's year.
// Near year boundaries the anchor year can differ from d's own year.
func WeekNumber(d time.Time) int {
	thursday := addDays(StartOfDay(d), 4-ISOWeekday(d.Weekday()))
	// YearDay counts calendar days, so DST shifts never skew the result.
	return (thursday.YearDay() + 6) / 7
}

// NewWeekInfo bundles the week containing d into a snapshot.
func NewWeekInfo(d time.Time) WeekInfo {
	start := StartOfWeek(d)
	return WeekInfo{
		WeekNumber: WeekNumber(d),
		Year:       start.Year(),
		StartDate:  start,
		EndDate:    EndOfWeek(d),
		Days:       WeekDays(start),
	}
}

// Next returns the following week.
func (w WeekInfo) Next() WeekInfo {
	return NewWeekInfo(AddWeeks(w.StartDate, 1))
}

// Prev returns the preceding week.
func (w WeekInfo) Prev() WeekInfo {
	return NewWeekInfo(AddWeeks(w.StartDate, -1))
}

// Contains reports whether d falls on one of the week's days.
func (w WeekInfo) Contains(d time.Time) bool {
	return IsDateInWeek(d, w)
}

// IsSameDay reports whether a and b share year, month and day-of-month.
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsToday reports whether d falls on the current day.
func IsToday(d time.Time) bool {
	return IsTodayAt(d, time.Now().In(d.Location()))
}

// IsTodayAt reports whether d falls on the same day as now.
func IsTodayAt(d, now time.Time) bool {
	return IsSameDay(d, now)
}

// IsDateInWeek reports whether the calendar day of d lies within the week,
// both ends inclusive.
func IsDateInWeek(d time.Time, week WeekInfo) bool {
	day := civilDay(d)
	return day >= civilDay(week.StartDate) && day <= civilDay(week.EndDate)
}

// civilDay encodes the wall-clock date of t as yyyymmdd for ordering.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// AddWeeks shifts d by n weeks of calendar days, keeping its time-of-day.
func AddWeeks(d time.Time, n int) time.Time {
	return addDays(d, 7*n)
}

func addDays(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	h, mi, sec := d.Clock()
	return time.Date(y, m, day+n, h, mi, sec, d.Nanosecond(), d.Location())
}
