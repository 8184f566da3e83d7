package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/weekcal-api/internal/models"
)

// Messages reported by the form helpers.
const (
	MsgTitleRequired  = "Event title is required"
	MsgTimesRequired  = "Start and end times are required"
	MsgInvalidTime    = "Invalid time format, expected HH:mm"
	MsgEndBeforeStart = "End time must be after start time"
)

// ValidationError reports user input that breaks a business rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// EventFormData is the raw input of the event form.
type EventFormData struct {
	Title     string    `json:"title"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Date      time.Time `json:"date"`
}

// TimeSlot identifies a single (day, hour) cell of the grid.
type TimeSlot struct {
	Date time.Time `json:"date"`
	Hour int       `json:"hour"`
}

// Start returns the instant the slot begins.
func (s TimeSlot) Start() time.Time {
	return DateAtHour(s.Date, s.Hour)
}

// ParseClock parses an "HH:mm" string into hour and minute.
func ParseClock(raw string) (int, int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, 0, &ValidationError{Message: MsgInvalidTime}
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, &ValidationError{Message: MsgInvalidTime}
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minute < 0 || minute > 59 {
		return 0, 0, &ValidationError{Message: MsgInvalidTime}
	}
	return hour, minute, nil
}

// ValidateTimes checks that both clock strings are present and that end is
// strictly after start.
func ValidateTimes(start, end string) error {
	if start == "" || end == "" {
		return &ValidationError{Field: "time", Message: MsgTimesRequired}
	}
	sh, sm, err := ParseClock(start)
	if err != nil {
		return &ValidationError{Field: "start_time", Message: MsgInvalidTime}
	}
	eh, em, err := ParseClock(end)
	if err != nil {
		return &ValidationError{Field: "end_time", Message: MsgInvalidTime}
	}
	if eh*60+em <= sh*60+sm {
		return &ValidationError{Field: "end_time", Message: MsgEndBeforeStart}
	}
	return nil
}

// ValidateForm trims the title and validates the whole form. It returns the
// form with the trimmed title.
func ValidateForm(form EventFormData) (EventFormData, error) {
	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" {
		return form, &ValidationError{Field: "title", Message: MsgTitleRequired}
	}
	if err := ValidateTimes(form.StartTime, form.EndTime); err != nil {
		return form, err
	}
	return form, nil
}

// BuildEvent turns form input into an event without id. Start and end take
// the calendar day of form.Date with the parsed clock times; seconds are zero.
// The title is used as given.
func BuildEvent(form EventFormData, color string) (models.EventDraft, error) {
	sh, sm, err := ParseClock(form.StartTime)
	if err != nil {
		return models.EventDraft{}, &ValidationError{Field: "start_time", Message: MsgInvalidTime}
	}
	eh, em, err := ParseClock(form.EndTime)
	if err != nil {
		return models.EventDraft{}, &ValidationError{Field: "end_time", Message: MsgInvalidTime}
	}
	y, m, d := form.Date.Date()
	loc := form.Date.Location()
	return models.EventDraft{
		Title: form.Title,
		Start: time.Date(y, m, d, sh, sm, 0, 0, loc),
		End:   time.Date(y, m, d, eh, em, 0, 0, loc),
		Color: color,
	}, nil
}

// FormatEventTime renders the time range of an event, e.g. "9:00 AM - 9:30 AM".
func FormatEventTime(event models.CalendarEvent) string {
	return FormatClock(event.Start) + " - " + FormatClock(event.End)
}
