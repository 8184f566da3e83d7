package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/dto"
	"github.com/noah-isme/weekcal-api/internal/models"
	appErrors "github.com/noah-isme/weekcal-api/pkg/errors"
)

const maxUpcomingLimit = 100

type eventRangeReader interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, int, error)
}

// ViewGrid is the grid geometry served by the view endpoints.
type ViewGrid struct {
	calendar.GridConfig
	MinEventHeightPx float64
}

// ViewServiceConfig configures a ViewService.
type ViewServiceConfig struct {
	Grid          ViewGrid
	Location      *time.Location
	UpcomingLimit int
	CacheTTL      time.Duration
	Now           func() time.Time
}

// ViewService computes the read models behind the week grid: the week
// calculator picks the days, the query engine picks the events and the
// geometry mapper places them.
type ViewService struct {
	repo          eventRangeReader
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger
	grid          ViewGrid
	loc           *time.Location
	upcomingLimit int
	cacheTTL      time.Duration
	now           func() time.Time
}

// NewViewService builds a view service. The grid must already be valid.
func NewViewService(repo eventRangeReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ViewServiceConfig) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = calendar.DefaultUpcomingLimit
	}
	if cfg.Grid.RowHeightPx == 0 {
		cfg.Grid.GridConfig = calendar.DefaultGrid
	}
	return &ViewService{
		repo:          repo,
		cache:         cache,
		metrics:       metrics,
		logger:        logger,
		grid:          cfg.Grid,
		loc:           cfg.Location,
		upcomingLimit: cfg.UpcomingLimit,
		cacheTTL:      cfg.CacheTTL,
		now:           cfg.Now,
	}
}

// Today returns the current instant in the view location.
func (s *ViewService) Today() time.Time {
	return s.now().In(s.loc)
}

// ParseDate reads a "YYYY-MM-DD" query value as midnight in the view
// location. An empty value means today.
func (s *ViewService) ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return calendar.StartOfDay(s.Today()), nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, s.loc)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must use the YYYY-MM-DD format")
	}
	return d, nil
}

const borderDarkenPct = 20

// Week returns the grid view of the week containing date and whether it came
// from the cache.
func (s *ViewService) Week(ctx context.Context, date time.Time) (*dto.WeekView, bool, error) {
	week := calendar.NewWeekInfo(date.In(s.loc))
	key := weekViewKey(week.StartDate)

	var cached dto.WeekView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	events, err := s.load(ctx, "views_week", week.StartDate, week.EndDate)
	if err != nil {
		return nil, false, err
	}

	inWeek := calendar.SortByStart(calendar.EventsInWeek(events, week))
	positioned := make([]dto.PositionedEvent, 0, len(inWeek))
	for _, pos := range calendar.Positions(inWeek, s.grid.GridConfig) {
		positioned = append(positioned, dto.PositionedEvent{
			Event:          pos.Event,
			Column:         pos.Column,
			Top:            pos.Top,
			Height:         pos.Height,
			RenderedHeight: calendar.RenderedHeight(pos, s.grid.MinEventHeightPx),
			TimeLabel:      calendar.FormatEventTime(pos.Event),
			BorderColor:    borderColor(pos.Event.Color),
		})
	}

	view := &dto.WeekView{
		Week:    week,
		Label:   fmt.Sprintf("%s %d", calendar.MonthName(week.StartDate), week.StartDate.Year()),
		Columns: calendar.DayColumns(week, s.Today()),
		Grid: dto.GridView{
			StartHour:        s.grid.StartHour,
			EndHour:          s.grid.EndHour,
			RowHeightPx:      s.grid.RowHeightPx,
			HeightPx:         s.grid.Height(),
			MinEventHeightPx: s.grid.MinEventHeightPx,
			HourLabels:       s.grid.HourLabels(),
		},
		Events: positioned,
	}
	s.cache.Set(ctx, key, view, s.cacheTTL)
	return view, false, nil
}

// Day lists the events of the day of date, ordered by start.
func (s *ViewService) Day(ctx context.Context, date time.Time) (*dto.DayView, error) {
	day := calendar.StartOfDay(date.In(s.loc))
	events, err := s.load(ctx, "views_day", day, calendar.DateAtHour(day, 24))
	if err != nil {
		return nil, err
	}
	return &dto.DayView{
		Date:    day,
		Header:  calendar.FormatDayHeader(day),
		IsToday: calendar.IsTodayAt(day, s.Today()),
		Events:  agenda(calendar.EventsForDay(events, day)),
	}, nil
}

// Slot lists the events overlapping the hour slot and reports whether the
// slot is free for a new event.
func (s *ViewService) Slot(ctx context.Context, date time.Time, hour int) (*dto.SlotView, error) {
	if hour < 0 || hour > 23 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hour must be between 0 and 23")
	}
	slot := calendar.TimeSlot{Date: calendar.StartOfDay(date.In(s.loc)), Hour: hour}
	start, end := calendar.SlotBounds(slot.Date, hour)
	events, err := s.load(ctx, "views_slot", start, end)
	if err != nil {
		return nil, err
	}
	overlapping := calendar.EventsInSlot(events, slot.Date, hour)
	return &dto.SlotView{
		Slot:   slot,
		Label:  calendar.FormatHourLabel(hour),
		Start:  start,
		End:    end,
		Free:   len(overlapping) == 0,
		Events: agenda(overlapping),
	}, nil
}

// Month returns the mini calendar of the month of date with the week of date
// highlighted, and whether it came from the cache.
func (s *ViewService) Month(ctx context.Context, date time.Time) (*dto.MonthView, bool, error) {
	local := date.In(s.loc)
	week := calendar.NewWeekInfo(local)
	key := monthViewKey(local, week.StartDate)

	var cached dto.MonthView
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	today := s.Today()
	cells := calendar.MonthGrid(local)
	days := make([]dto.MonthDay, len(cells))
	for i, cell := range cells {
		days[i] = dto.MonthDay{
			Date:    cell.Date,
			Day:     cell.Day,
			InMonth: cell.InMonth,
			InWeek:  week.Contains(cell.Date),
			IsToday: calendar.IsTodayAt(cell.Date, today),
		}
	}
	view := &dto.MonthView{
		Year:  local.Year(),
		Month: int(local.Month()),
		Label: fmt.Sprintf("%s %d", calendar.MonthName(local), local.Year()),
		Week:  week,
		Days:  days,
	}
	s.cache.Set(ctx, key, view, s.cacheTTL)
	return view, false, nil
}

// Upcoming lists up to limit events starting today or later. A non-positive
// limit uses the configured default.
func (s *ViewService) Upcoming(ctx context.Context, limit int) (*dto.UpcomingView, error) {
	if limit <= 0 {
		limit = s.upcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	now := s.Today()
	from := calendar.StartOfDay(now)

	start := time.Now()
	events, _, err := s.repo.List(ctx, models.EventFilter{From: &from})
	s.metrics.ObserveDBQuery("views_upcoming", time.Since(start))
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to load events")
	}
	return &dto.UpcomingView{
		Limit:  limit,
		Events: agenda(calendar.Upcoming(s.localize(events), now, limit)),
	}, nil
}

func (s *ViewService) load(ctx context.Context, label string, from, to time.Time) ([]models.CalendarEvent, error) {
	start := time.Now()
	events, _, err := s.repo.List(ctx, models.EventFilter{From: &from, To: &to})
	s.metrics.ObserveDBQuery(label, time.Since(start))
	if err != nil {
		s.logger.Error("load events for view failed", zap.String("view", label), zap.Error(err))
		return nil, appErrors.ErrInternal.With(err, "failed to load events")
	}
	return s.localize(events), nil
}

func (s *ViewService) localize(events []models.CalendarEvent) []models.CalendarEvent {
	out := make([]models.CalendarEvent, len(events))
	for i, event := range events {
		event.Start = event.Start.In(s.loc)
		event.End = event.End.In(s.loc)
		out[i] = event
	}
	return out
}

func agenda(events []models.CalendarEvent) []dto.AgendaEvent {
	out := make([]dto.AgendaEvent, len(events))
	for i, event := range events {
		out[i] = dto.AgendaEvent{
			Event:     event,
			DayHeader: calendar.FormatDayHeader(event.Start),
			TimeLabel: calendar.FormatEventTime(event),
		}
	}
	return out
}

// borderColor shades the event color for its block outline. Colors that do not
// parse as #RRGGBB are used as they are.
func borderColor(color string) string {
	dark, err := calendar.DarkenColor(color, borderDarkenPct)
	if err != nil {
		return color
	}
	return dark
}
