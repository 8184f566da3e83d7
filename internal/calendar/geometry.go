package calendar

import (
	"errors"
	"math"
	"time"

	"github.com/noah-isme/weekcal-api/internal/models"
)

// GridConfig describes the visible hour rows of the week grid.
// Rows cover [StartHour, EndHour) in whole hours.
type GridConfig struct {
	StartHour   int     `json:"start_hour"`
	EndHour     int     `json:"end_hour"`
	RowHeightPx float64 `json:"row_height_px"`
}

// DefaultGrid is a full-day grid with 60px rows.
var DefaultGrid = GridConfig{StartHour: 0, EndHour: 24, RowHeightPx: 60}

// Validate checks the grid bounds.
func (g GridConfig) Validate() error {
	switch {
	case g.StartHour < 0 || g.StartHour > 23:
		return errors.New("grid start hour must be between 0 and 23")
	case g.EndHour <= g.StartHour || g.EndHour > 24:
		return errors.New("grid end hour must be after start hour and at most 24")
	case g.RowHeightPx <= 0 || math.IsNaN(g.RowHeightPx) || math.IsInf(g.RowHeightPx, 0):
		return errors.New("grid row height must be positive")
	}
	return nil
}

// Hours lists the hour of every row.
func (g GridConfig) Hours() []int {
	if g.EndHour <= g.StartHour {
		return nil
	}
	hours := make([]int, 0, g.EndHour-g.StartHour)
	for h := g.StartHour; h < g.EndHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// HourLabels lists the display label of every row.
func (g GridConfig) HourLabels() []string {
	hours := g.Hours()
	labels := make([]string, len(hours))
	for i, h := range hours {
		labels[i] = FormatHourLabel(h)
	}
	return labels
}

// Height is the pixel height of the whole grid.
func (g GridConfig) Height() float64 {
	return float64(g.EndHour-g.StartHour) * g.RowHeightPx
}

// EventPosition places an event on the grid.
type EventPosition struct {
	Event  models.CalendarEvent `json:"event"`
	Top    float64              `json:"top"`
	Height float64              `json:"height"`
	Column int                  `json:"column"`
}

// ColumnOf returns the Monday-first column of the day the event starts on.
func ColumnOf(event models.CalendarEvent) int {
	return MondayIndex(event.Start.Weekday())
}

// Position maps the event onto the grid. Top is measured from the first row
// and height is proportional to the duration. Values are not clamped: events
// outside the visible rows get negative or overflowing offsets.
func Position(event models.CalendarEvent, cfg GridConfig) EventPosition {
	startHours := float64(event.Start.Hour()) + float64(event.Start.Minute())/60
	duration := float64(event.End.Sub(event.Start)) / float64(time.Hour)
	return EventPosition{
		Event:  event,
		Top:    (startHours - float64(cfg.StartHour)) * cfg.RowHeightPx,
		Height: duration * cfg.RowHeightPx,
		Column: ColumnOf(event),
	}
}

// Positions maps every event onto the grid, preserving order.
func Positions(events []models.CalendarEvent, cfg GridConfig) []EventPosition {
	positions := make([]EventPosition, len(events))
	for i, event := range events {
		positions[i] = Position(event, cfg)
	}
	return positions
}

// RenderedHeight applies a visual floor to a raw height.
func RenderedHeight(pos EventPosition, minPx float64) float64 {
	return math.Max(pos.Height, minPx)
}
