package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekcal-api/internal/service"
	"github.com/noah-isme/weekcal-api/pkg/response"
)

type exportService interface {
	WeekAgenda(ctx context.Context, date time.Time, format string) (*service.ExportFile, error)
	Feed(ctx context.Context) (*service.ExportFile, error)
}

// ExportHandler serves file downloads.
type ExportHandler struct {
	exports exportService
	views   viewService
}

// NewExportHandler constructs an export handler. Dates are parsed by views.
func NewExportHandler(exports exportService, views viewService) *ExportHandler {
	return &ExportHandler{exports: exports, views: views}
}

// Week godoc
// @Summary Export week agenda
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param date query string false "Any day of the week (YYYY-MM-DD), defaults to today"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /exports/week [get]
func (h *ExportHandler) Week(c *gin.Context) {
	date, err := h.views.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.WeekAgenda(c.Request.Context(), date, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Data)
}

// Feed godoc
// @Summary iCalendar feed
// @Description Every event as an iCalendar file
// @Tags Exports
// @Produce text/calendar
// @Success 200 {file} file
// @Router /events.ics [get]
func (h *ExportHandler) Feed(c *gin.Context) {
	file, err := h.exports.Feed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Data)
}
