package calendar

import (
	"slices"
	"time"

	"github.com/noah-isme/weekcal-api/internal/models"
)

// DefaultUpcomingLimit caps the upcoming list when no limit is given.
const DefaultUpcomingLimit = 10

// EventsOnDay returns the events that start on the day of date, or that are
// still running when that day begins (start before midnight, end after it).
func EventsOnDay(events []models.CalendarEvent, date time.Time) []models.CalendarEvent {
	midnight := StartOfDay(date)
	result := make([]models.CalendarEvent, 0, len(events))
	for _, event := range events {
		if IsSameDay(event.Start, date) || (event.Start.Before(midnight) && event.End.After(midnight)) {
			result = append(result, event)
		}
	}
	return result
}

// EventsForDay is EventsOnDay ordered by start time.
func EventsForDay(events []models.CalendarEvent, date time.Time) []models.CalendarEvent {
	return SortByStart(EventsOnDay(events, date))
}

// EventsInWeek returns the events whose start day falls inside the week.
// The end of an event is ignored, so an event that begins the Sunday before
// and runs into Monday is not part of the week.
func EventsInWeek(events []models.CalendarEvent, week WeekInfo) []models.CalendarEvent {
	result := make([]models.CalendarEvent, 0, len(events))
	for _, event := range events {
		if IsDateInWeek(event.Start, week) {
			result = append(result, event)
		}
	}
	return result
}

// SortByStart returns a copy of events ordered by start time. Events with the
// same start keep their relative order. The input is never modified.
func SortByStart(events []models.CalendarEvent) []models.CalendarEvent {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b models.CalendarEvent) int {
		return a.Start.Compare(b.Start)
	})
	return sorted
}

// SlotBounds returns the half-open interval [start, end) covered by the
// one-hour slot at hour on the day of date.
func SlotBounds(date time.Time, hour int) (time.Time, time.Time) {
	return DateAtHour(date, hour), DateAtHour(date, hour+1)
}

// OverlapsSlot reports whether event intersects the one-hour slot at hour on
// the day of date. Touching boundaries do not count as overlap.
func OverlapsSlot(event models.CalendarEvent, date time.Time, hour int) bool {
	slotStart, slotEnd := SlotBounds(date, hour)
	return event.Start.Before(slotEnd) && event.End.After(slotStart)
}

// EventsInSlot returns the events overlapping the slot, ordered by start.
func EventsInSlot(events []models.CalendarEvent, date time.Time, hour int) []models.CalendarEvent {
	result := make([]models.CalendarEvent, 0)
	for _, event := range events {
		if OverlapsSlot(event, date, hour) {
			result = append(result, event)
		}
	}
	return SortByStart(result)
}

// Upcoming returns up to limit events starting on or after the beginning of
// the day of now, ordered by start.
func Upcoming(events []models.CalendarEvent, now time.Time, limit int) []models.CalendarEvent {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	today := StartOfDay(now)
	result := make([]models.CalendarEvent, 0, len(events))
	for _, event := range events {
		if !event.Start.Before(today) {
			result = append(result, event)
		}
	}
	result = SortByStart(result)
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
