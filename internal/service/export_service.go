package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/models"
	appErrors "github.com/noah-isme/weekcal-api/pkg/errors"
	"github.com/noah-isme/weekcal-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var agendaHeaders = []string{"Day", "Date", "Start", "End", "Title", "Color"}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

type calendarRenderer interface {
	Render(events []models.CalendarEvent, name string) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders week agendas and the iCalendar feed.
type ExportService struct {
	events    eventRangeReader
	renderers map[string]datasetRenderer
	ics       calendarRenderer
	loc       *time.Location
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the CSV, PDF and
// iCalendar exporters.
func NewExportService(events eventRangeReader, loc *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{
		events: events,
		renderers: map[string]datasetRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(1, 1, 1, 1, 3, 1),
		},
		ics:    export.NewICSExporter(nil),
		loc:    loc,
		logger: logger,
	}
}

// WeekAgenda renders the events of the week containing date.
func (s *ExportService) WeekAgenda(ctx context.Context, date time.Time, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	week := calendar.NewWeekInfo(date.In(s.loc))
	from, to := week.StartDate, week.EndDate
	events, _, err := s.events.List(ctx, models.EventFilter{From: &from, To: &to})
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to load events")
	}
	for i := range events {
		events[i].Start = events[i].Start.In(s.loc)
		events[i].End = events[i].End.In(s.loc)
	}

	data, err := renderer.Render(WeekAgendaDataset(week, events))
	if err != nil {
		s.logger.Error("render week agenda failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.ErrInternal.With(err, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("week-%s.%s", week.StartDate.Format("2006-01-02"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// Feed renders every stored event as an iCalendar file.
func (s *ExportService) Feed(ctx context.Context) (*ExportFile, error) {
	events, _, err := s.events.List(ctx, models.EventFilter{})
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to load events")
	}
	data, err := s.ics.Render(events, "weekcal")
	if err != nil {
		s.logger.Error("render ics feed failed", zap.Error(err))
		return nil, appErrors.ErrInternal.With(err, "failed to render calendar feed")
	}
	return &ExportFile{Filename: "events." + s.ics.Extension(), ContentType: s.ics.ContentType(), Data: data}, nil
}

// WeekAgendaDataset lays the week's events out as agenda rows, ordered by start.
func WeekAgendaDataset(week calendar.WeekInfo, events []models.CalendarEvent) export.Dataset {
	inWeek := calendar.SortByStart(calendar.EventsInWeek(events, week))
	rows := make([][]string, 0, len(inWeek))
	for _, event := range inWeek {
		rows = append(rows, []string{
			calendar.DayName(event.Start),
			event.Start.Format("2006-01-02"),
			calendar.FormatClock(event.Start),
			calendar.FormatClock(event.End),
			event.Title,
			event.Color,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Week %d, %d (%s - %s)", week.WeekNumber, week.Year, week.StartDate.Format("Jan 2"), week.EndDate.Format("Jan 2")),
		Headers: agendaHeaders,
		Rows:    rows,
	}
}
