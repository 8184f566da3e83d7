package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/models"
	appErrors "github.com/noah-isme/weekcal-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, int, error)
	FindByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, id string) error
}

type viewInvalidator interface {
	Schedule(ctx context.Context, reason string)
}

// CreateEventRequest is the payload for creating an event from explicit instants.
type CreateEventRequest struct {
	Title string    `json:"title" validate:"required,max=200"`
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
	Color string    `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateEventRequest is a partial update. Omitted fields keep their value.
type UpdateEventRequest struct {
	Title *string    `json:"title" validate:"omitempty,max=200"`
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
	Color *string    `json:"color" validate:"omitempty,hexcolor"`
}

// FormEventRequest mirrors the event form: a day plus "HH:mm" clock times.
type FormEventRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
}

// EventService owns event writes and reads against the store.
type EventService struct {
	repo        eventRepository
	validator   *validator.Validate
	invalidator viewInvalidator
	metrics     *MetricsService
	logger      *zap.Logger
	loc         *time.Location
	pickColor   func() string
}

// EventServiceOption customises an EventService.
type EventServiceOption func(*EventService)

// WithEventPalette sets the colors assigned to events created without one.
func WithEventPalette(palette []string) EventServiceOption {
	return func(s *EventService) {
		colors := append([]string(nil), palette...)
		s.pickColor = func() string { return calendar.PickColor(nil, colors) }
	}
}

// WithColorPicker overrides how missing colors are chosen.
func WithColorPicker(pick func() string) EventServiceOption {
	return func(s *EventService) { s.pickColor = pick }
}

// WithEventMetrics attaches the metrics service.
func WithEventMetrics(metrics *MetricsService) EventServiceOption {
	return func(s *EventService) { s.metrics = metrics }
}

// WithViewInvalidator attaches the view cache invalidator run after writes.
func WithViewInvalidator(inv viewInvalidator) EventServiceOption {
	return func(s *EventService) { s.invalidator = inv }
}

// NewEventService creates an event service. Events are returned on the wall
// clock of loc.
func NewEventService(repo eventRepository, validate *validator.Validate, loc *time.Location, logger *zap.Logger, opts ...EventServiceOption) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	svc := &EventService{repo: repo, validator: validate, logger: logger, loc: loc}
	WithEventPalette(calendar.Palette)(svc)
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Location returns the location events are presented in.
func (s *EventService) Location() *time.Location {
	return s.loc
}

// List returns events overlapping the filter range.
func (s *EventService) List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, *models.Pagination, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}

	start := time.Now()
	events, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("events_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.ErrInternal.With(err, "failed to list events")
	}

	pagination := &models.Pagination{Page: 1, PageSize: total, TotalCount: total}
	if filter.PageSize > 0 {
		pagination.PageSize = filter.PageSize
		if filter.Page > 1 {
			pagination.Page = filter.Page
		}
	}
	return s.localize(events), pagination, nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	start := time.Now()
	event, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("events_get", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.ErrInternal.With(err, "failed to load event")
	}
	local := s.localizeOne(*event)
	return &local, nil
}

// Create stores a new event.
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*models.CalendarEvent, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, calendar.MsgTitleRequired)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid event payload")
	}
	return s.insert(ctx, models.EventDraft{Title: req.Title, Start: req.Start, End: req.End, Color: req.Color})
}

// CreateFromForm validates form input and stores the resulting event.
func (s *EventService) CreateFromForm(ctx context.Context, req FormEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid event form")
	}
	day, err := time.ParseInLocation("2006-01-02", req.Date, s.loc)
	if err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid date")
	}

	form, err := calendar.ValidateForm(calendar.EventFormData{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Date:      day,
	})
	if err != nil {
		return nil, validationFailure(err)
	}
	draft, err := calendar.BuildEvent(form, req.Color)
	if err != nil {
		return nil, validationFailure(err)
	}
	return s.insert(ctx, draft)
}

// Update applies a partial update and returns the full record.
func (s *EventService) Update(ctx context.Context, id string, req UpdateEventRequest) (*models.CalendarEvent, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, calendar.MsgTitleRequired)
		}
		req.Title = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.ErrValidation.With(err, "invalid event payload")
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := models.EventPatch{Title: req.Title, Start: req.Start, End: req.End, Color: req.Color}
	if patch.Empty() {
		return current, nil
	}
	updated := patch.Apply(*current)
	if !updated.End.After(updated.Start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, calendar.MsgEndBeforeStart)
	}

	start := time.Now()
	err = s.repo.Update(ctx, &updated)
	s.metrics.ObserveDBQuery("events_update", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.ErrInternal.With(err, "failed to update event")
	}

	s.afterWrite(ctx, MutationUpdate, updated.ID)
	local := s.localizeOne(updated)
	return &local, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveDBQuery("events_delete", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.ErrInternal.With(err, "failed to delete event")
	}
	s.afterWrite(ctx, MutationDelete, id)
	return nil
}

func (s *EventService) insert(ctx context.Context, draft models.EventDraft) (*models.CalendarEvent, error) {
	if !draft.End.After(draft.Start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, calendar.MsgEndBeforeStart)
	}
	if draft.Color == "" {
		draft.Color = s.pickColor()
	}

	event := &models.CalendarEvent{Title: draft.Title, Start: draft.Start, End: draft.End, Color: draft.Color}
	start := time.Now()
	err := s.repo.Create(ctx, event)
	s.metrics.ObserveDBQuery("events_create", time.Since(start))
	if err != nil {
		return nil, appErrors.ErrInternal.With(err, "failed to create event")
	}

	s.afterWrite(ctx, MutationCreate, event.ID)
	local := s.localizeOne(*event)
	return &local, nil
}

func (s *EventService) afterWrite(ctx context.Context, op, id string) {
	s.metrics.RecordEventMutation(op)
	s.logger.Info("event "+op+"d", zap.String("event_id", id))
	if s.invalidator != nil {
		s.invalidator.Schedule(context.WithoutCancel(ctx), "event "+op)
	}
}

func (s *EventService) localize(events []models.CalendarEvent) []models.CalendarEvent {
	out := make([]models.CalendarEvent, len(events))
	for i, event := range events {
		out[i] = s.localizeOne(event)
	}
	return out
}

func (s *EventService) localizeOne(event models.CalendarEvent) models.CalendarEvent {
	event.Start = event.Start.In(s.loc)
	event.End = event.End.In(s.loc)
	return event
}

// validationFailure maps calendar validation errors onto the API error type.
func validationFailure(err error) error {
	var ve *calendar.ValidationError
	if errors.As(err, &ve) {
		return appErrors.ErrValidation.With(err, ve.Message)
	}
	return appErrors.ErrValidation.With(err, "")
}
