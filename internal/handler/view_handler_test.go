package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekcal-api/internal/calendar"
	"github.com/noah-isme/weekcal-api/internal/dto"
	"github.com/noah-isme/weekcal-api/internal/middleware"
	"github.com/noah-isme/weekcal-api/internal/service"
	appErrors "github.com/noah-isme/weekcal-api/pkg/errors"
)

type viewServiceMock struct {
	today    time.Time
	weekDate time.Time
	slotHour int
	limit    int
	hit      bool
}

func (m *viewServiceMock) ParseDate(raw string) (time.Time, error) {
	if raw == "" {
		return m.today, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return t, nil
}

func (m *viewServiceMock) Week(ctx context.Context, date time.Time) (*dto.WeekView, bool, error) {
	m.weekDate = date
	week := calendar.NewWeekInfo(date)
	return &dto.WeekView{Week: week, Label: calendar.MonthName(week.StartDate)}, m.hit, nil
}

func (m *viewServiceMock) Day(ctx context.Context, date time.Time) (*dto.DayView, error) {
	return &dto.DayView{Date: date}, nil
}

func (m *viewServiceMock) Slot(ctx context.Context, date time.Time, hour int) (*dto.SlotView, error) {
	m.slotHour = hour
	if hour < 0 || hour > 23 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hour must be between 0 and 23")
	}
	return &dto.SlotView{Free: true}, nil
}

func (m *viewServiceMock) Month(ctx context.Context, date time.Time) (*dto.MonthView, bool, error) {
	return &dto.MonthView{Year: date.Year(), Month: int(date.Month())}, m.hit, nil
}

func (m *viewServiceMock) Upcoming(ctx context.Context, limit int) (*dto.UpcomingView, error) {
	m.limit = limit
	return &dto.UpcomingView{Limit: limit}, nil
}

type exportServiceMock struct {
	format string
	date   time.Time
}

func (m *exportServiceMock) WeekAgenda(ctx context.Context, date time.Time, format string) (*service.ExportFile, error) {
	m.date = date
	m.format = format
	if format != "" && format != service.ExportFormatCSV && format != service.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{Filename: "week-2024-01-15.csv", ContentType: "text/csv", Data: []byte("Day,Date\n")}, nil
}

func (m *exportServiceMock) Feed(ctx context.Context) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "events.ics", ContentType: "text/calendar", Data: []byte("BEGIN:VCALENDAR\r\n")}, nil
}

func newViewRouter(views *viewServiceMock, exports *exportServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	vh := NewViewHandler(views)
	eh := NewExportHandler(exports, views)
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.GET("/views/week", vh.Week)
	r.GET("/views/week/next", vh.NextWeek)
	r.GET("/views/week/prev", vh.PrevWeek)
	r.GET("/views/day", vh.Day)
	r.GET("/views/slot", vh.Slot)
	r.GET("/views/month", vh.Month)
	r.GET("/views/upcoming", vh.Upcoming)
	r.GET("/exports/week", eh.Week)
	r.GET("/events.ics", eh.Feed)
	return r
}

func TestViewHandlerWeekDefaultsToToday(t *testing.T) {
	views := &viewServiceMock{today: time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), hit: true}
	w := serve(newViewRouter(views, &exportServiceMock{}), http.MethodGet, "/views/week", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, views.today, views.weekDate)

	var payload struct {
		Data dto.WeekView           `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, 3, payload.Data.Week.WeekNumber)
	assert.Equal(t, true, payload.Meta["cache_hit"])
}

func TestViewHandlerWeekNavigation(t *testing.T) {
	views := &viewServiceMock{}
	r := newViewRouter(views, &exportServiceMock{})

	w := serve(r, http.MethodGet, "/views/week/next?date=2024-01-17", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC), views.weekDate)

	w = serve(r, http.MethodGet, "/views/week/prev?date=2024-01-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), views.weekDate)
}

func TestViewHandlerRejectsBadDate(t *testing.T) {
	w := serve(newViewRouter(&viewServiceMock{}, &exportServiceMock{}), http.MethodGet, "/views/day?date=17/01/2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestViewHandlerSlotRequiresHour(t *testing.T) {
	views := &viewServiceMock{}
	r := newViewRouter(views, &exportServiceMock{})

	w := serve(r, http.MethodGet, "/views/slot?date=2024-01-17", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, -1, views.slotHour)

	w = serve(r, http.MethodGet, "/views/slot?date=2024-01-17&hour=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodGet, "/views/slot?date=2024-01-17&hour=9", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 9, views.slotHour)
}

func TestViewHandlerMonthAndUpcoming(t *testing.T) {
	views := &viewServiceMock{}
	r := newViewRouter(views, &exportServiceMock{})

	w := serve(r, http.MethodGet, "/views/month?date=2024-02-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"month":2`)
	assert.Contains(t, w.Body.String(), `"cache_hit":false`)

	w = serve(r, http.MethodGet, "/views/upcoming?limit=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, views.limit)
}

func TestExportHandlerWeekAttachment(t *testing.T) {
	exports := &exportServiceMock{}
	w := serve(newViewRouter(&viewServiceMock{}, exports), http.MethodGet, "/exports/week?date=2024-01-17&format=csv", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exports.format)
	assert.Equal(t, time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC), exports.date)
	assert.Equal(t, `attachment; filename="week-2024-01-15.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}

func TestExportHandlerRejectsUnknownFormat(t *testing.T) {
	w := serve(newViewRouter(&viewServiceMock{}, &exportServiceMock{}), http.MethodGet, "/exports/week?format=xlsx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerFeed(t *testing.T) {
	w := serve(newViewRouter(&viewServiceMock{}, &exportServiceMock{}), http.MethodGet, "/events.ics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BEGIN:VCALENDAR")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
