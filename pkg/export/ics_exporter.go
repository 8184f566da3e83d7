package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"

	"github.com/noah-isme/weekcal-api/internal/models"
)

// ProductID identifies this service in generated calendars.
const ProductID = "-//weekcal//weekcal-api//EN"

// RFC 7986 calendar and event properties.
const (
	propName  = "NAME"
	propColor = "COLOR"
)

// ICSExporter renders events as an iCalendar feed.
type ICSExporter struct {
	now func() time.Time
}

// NewICSExporter builds an iCalendar exporter. A nil clock uses time.Now.
func NewICSExporter(now func() time.Time) *ICSExporter {
	if now == nil {
		now = time.Now
	}
	return &ICSExporter{now: now}
}

// ContentType is the MIME type of the rendered output.
func (e *ICSExporter) ContentType() string { return "text/calendar; charset=utf-8" }

// Extension is the file extension of the rendered output.
func (e *ICSExporter) Extension() string { return "ics" }

// Render encodes every event as a VEVENT. Times are written in UTC.
func (e *ICSExporter) Render(events []models.CalendarEvent, name string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	if name != "" {
		cal.Props.SetText(propName, name)
	}

	stamp := e.now().UTC()
	for _, event := range events {
		vevent := ical.NewEvent()
		vevent.Props.SetText(ical.PropUID, event.ID)
		vevent.Props.SetText(ical.PropSummary, event.Title)
		vevent.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.End.UTC())
		vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		if !event.UpdatedAt.IsZero() {
			vevent.Props.SetDateTime(ical.PropLastModified, event.UpdatedAt.UTC())
		}
		if event.Color != "" {
			vevent.Props.SetText(propColor, event.Color)
		}
		cal.Children = append(cal.Children, vevent.Component)
	}

	if len(cal.Children) == 0 {
		// The encoder refuses calendars without components.
		return emptyCalendar(name), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}

func emptyCalendar(name string) []byte {
	var buf bytes.Buffer
	buf.WriteString("BEGIN:VCALENDAR\r\n")
	buf.WriteString("VERSION:2.0\r\n")
	buf.WriteString("PRODID:" + ProductID + "\r\n")
	if name != "" {
		buf.WriteString("NAME:" + name + "\r\n")
	}
	buf.WriteString("END:VCALENDAR\r\n")
	return buf.Bytes()
}
