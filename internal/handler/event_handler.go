package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekcal-api/internal/models"
	"github.com/noah-isme/weekcal-api/internal/service"
	appErrors "github.com/noah-isme/weekcal-api/pkg/errors"
	"github.com/noah-isme/weekcal-api/pkg/response"
)

type eventService interface {
	Location() *time.Location
	List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, req service.CreateEventRequest) (*models.CalendarEvent, error)
	CreateFromForm(ctx context.Context, req service.FormEventRequest) (*models.CalendarEvent, error)
	Update(ctx context.Context, id string, req service.UpdateEventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// EventHandler exposes the event store endpoints.
type EventHandler struct {
	service eventService
}

// NewEventHandler constructs an event handler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List events
// @Description List events overlapping an optional range, ordered by start
// @Tags Events
// @Produce json
// @Param from query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size, 0 returns every event"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	loc := h.service.Location()
	var filter models.EventFilter
	var err error
	if filter.From, err = optionalInstant(c, "from", loc); err != nil {
		response.Error(c, err)
		return
	}
	if filter.To, err = optionalInstant(c, "to", loc); err != nil {
		response.Error(c, err)
		return
	}
	if filter.Page, err = queryInt(c, "page", 1); err != nil {
		response.Error(c, err)
		return
	}
	if filter.PageSize, err = queryInt(c, "page_size", 0); err != nil {
		response.Error(c, err)
		return
	}

	events, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid payload"))
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// CreateFromForm godoc
// @Summary Create event from form input
// @Description Builds the event from a date plus HH:mm start and end times
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.FormEventRequest true "Form payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /events/form [post]
func (h *EventHandler) CreateFromForm(c *gin.Context) {
	var req service.FormEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid payload"))
		return
	}
	event, err := h.service.CreateFromForm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update event
// @Description Partial update; omitted fields keep their value
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.UpdateEventRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.ErrValidation.With(err, "invalid payload"))
		return
	}
	event, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete event
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
