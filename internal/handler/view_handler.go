package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/dto"
	"github.com/noah-isme/weekcal-api/internal/middleware"
	"github.com/noah-isme/weekcal-api/pkg/response"
)

type viewService interface {
	ParseDate(raw string) (time.Time, error)
	Week(ctx context.Context, date time.Time) (*dto.WeekView, bool, error)
	Day(ctx context.Context, date time.Time) (*dto.DayView, error)
	Slot(ctx context.Context, date time.Time, hour int) (*dto.SlotView, error)
	Month(ctx context.Context, date time.Time) (*dto.MonthView, bool, error)
	Upcoming(ctx context.Context, limit int) (*dto.UpcomingView, error)
}

// ViewHandler exposes the computed calendar views.
type ViewHandler struct {
	service viewService
}

// NewViewHandler constructs a view handler.
func NewViewHandler(svc viewService) *ViewHandler {
	return &ViewHandler{service: svc}
}

// Week godoc
// @Summary Week grid
// @Description Week containing date with day columns, hour labels and positioned events
// @Tags Views
// @Produce json
// @Param date query string false "Any day of the week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope{data=dto.WeekView}
// @Router /views/week [get]
func (h *ViewHandler) Week(c *gin.Context) {
	h.week(c, 0)
}

// NextWeek godoc
// @Summary Following week grid
// @Tags Views
// @Produce json
// @Param date query string false "Any day of the current week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=dto.WeekView}
// @Router /views/week/next [get]
func (h *ViewHandler) NextWeek(c *gin.Context) {
	h.week(c, 1)
}

// PrevWeek godoc
// @Summary Preceding week grid
// @Tags Views
// @Produce json
// @Param date query string false "Any day of the current week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope{data=dto.WeekView}
// @Router /views/week/prev [get]
func (h *ViewHandler) PrevWeek(c *gin.Context) {
	h.week(c, -1)
}

func (h *ViewHandler) week(c *gin.Context, offset int) {
	date, err := h.service.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	view, hit, err := h.service.Week(c.Request.Context(), calendar.AddWeeks(date, offset))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ResponseMeta(c))
}

// Day godoc
// @Summary Day agenda
// @Tags Views
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope{data=dto.DayView}
// @Router /views/day [get]
func (h *ViewHandler) Day(c *gin.Context) {
	date, err := h.service.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Day(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Slot godoc
// @Summary Hour slot
// @Description Events overlapping the one-hour slot and whether it is free
// @Tags Views
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Param hour query int true "Hour 0-23"
// @Success 200 {object} response.Envelope{data=dto.SlotView}
// @Failure 400 {object} response.Envelope
// @Router /views/slot [get]
func (h *ViewHandler) Slot(c *gin.Context) {
	date, err := h.service.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	hour, err := queryInt(c, "hour", -1)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Slot(c.Request.Context(), date, hour)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Month godoc
// @Summary Mini calendar
// @Tags Views
// @Produce json
// @Param date query string false "Selected day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope{data=dto.MonthView}
// @Router /views/month [get]
func (h *ViewHandler) Month(c *gin.Context) {
	date, err := h.service.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	view, hit, err := h.service.Month(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, view, nil, middleware.ResponseMeta(c))
}

// Upcoming godoc
// @Summary Upcoming events
// @Tags Views
// @Produce json
// @Param limit query int false "Maximum number of events"
// @Success 200 {object} response.Envelope{data=dto.UpcomingView}
// @Router /views/upcoming [get]
func (h *ViewHandler) Upcoming(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Upcoming(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
