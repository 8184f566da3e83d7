package dto

import (
	"time"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/models"
)

// GridView describes the hour rows of the week grid.
type GridView struct {
	StartHour        int      `json:"startHour"`
	EndHour          int      `json:"endHour"`
	RowHeightPx      float64  `json:"rowHeightPx"`
	HeightPx         float64  `json:"heightPx"`
	MinEventHeightPx float64  `json:"minEventHeightPx"`
	HourLabels       []string `json:"hourLabels"`
}

// PositionedEvent is an event placed on the week grid.
type PositionedEvent struct {
	Event          models.CalendarEvent `json:"event"`
	Column         int                  `json:"column"`
	Top            float64              `json:"top"`
	Height         float64              `json:"height"`
	RenderedHeight float64              `json:"renderedHeight"`
	TimeLabel      string               `json:"timeLabel"`
	BorderColor    string               `json:"borderColor"`
}

// WeekView is everything needed to draw one week.
type WeekView struct {
	Week    calendar.WeekInfo    `json:"week"`
	Label   string               `json:"label"`
	Columns []calendar.DayColumn `json:"columns"`
	Grid    GridView             `json:"grid"`
	Events  []PositionedEvent    `json:"events"`
}

// AgendaEvent is an event with its display time range.
type AgendaEvent struct {
	Event     models.CalendarEvent `json:"event"`
	DayHeader string               `json:"dayHeader"`
	TimeLabel string               `json:"timeLabel"`
}

// DayView lists the events of one day.
type DayView struct {
	Date    time.Time     `json:"date"`
	Header  string        `json:"header"`
	IsToday bool          `json:"isToday"`
	Events  []AgendaEvent `json:"events"`
}

// SlotView describes one (day, hour) cell.
type SlotView struct {
	Slot   calendar.TimeSlot `json:"slot"`
	Label  string            `json:"label"`
	Start  time.Time         `json:"start"`
	End    time.Time         `json:"end"`
	Free   bool              `json:"free"`
	Events []AgendaEvent     `json:"events"`
}

// MonthDay is one cell of the mini calendar.
type MonthDay struct {
	Date    time.Time `json:"date"`
	Day     int       `json:"day"`
	InMonth bool      `json:"inMonth"`
	InWeek  bool      `json:"inWeek"`
	IsToday bool      `json:"isToday"`
}

// MonthView is the mini calendar around the selected week.
type MonthView struct {
	Year  int               `json:"year"`
	Month int               `json:"month"`
	Label string            `json:"label"`
	Week  calendar.WeekInfo `json:"week"`
	Days  []MonthDay        `json:"days"`
}

// UpcomingView lists the next events from today on.
type UpcomingView struct {
	Limit  int           `json:"limit"`
	Events []AgendaEvent `json:"events"`
}
