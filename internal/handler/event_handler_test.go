package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekcal-api/internal/models"
	"github.com/noah-isme/weekcal-api/internal/service"
	appErrors "github.com/noah-isme/weekcal-api/pkg/errors"
)

type eventServiceMock struct {
	events     []models.CalendarEvent
	lastFilter models.EventFilter
	lastCreate service.CreateEventRequest
	lastForm   service.FormEventRequest
	lastUpdate service.UpdateEventRequest
	deleted    string
	err        error
}

func (m *eventServiceMock) Location() *time.Location { return time.UTC }

func (m *eventServiceMock) List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, *models.Pagination, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.events, &models.Pagination{Page: 1, PageSize: len(m.events), TotalCount: len(m.events)}, nil
}

func (m *eventServiceMock) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, event := range m.events {
		if event.ID == id {
			e := event
			return &e, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (m *eventServiceMock) Create(ctx context.Context, req service.CreateEventRequest) (*models.CalendarEvent, error) {
	m.lastCreate = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.CalendarEvent{ID: "new", Title: req.Title, Start: req.Start, End: req.End}, nil
}

func (m *eventServiceMock) CreateFromForm(ctx context.Context, req service.FormEventRequest) (*models.CalendarEvent, error) {
	m.lastForm = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.CalendarEvent{ID: "form", Title: req.Title}, nil
}

func (m *eventServiceMock) Update(ctx context.Context, id string, req service.UpdateEventRequest) (*models.CalendarEvent, error) {
	m.lastUpdate = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.CalendarEvent{ID: id}, nil
}

func (m *eventServiceMock) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return m.err
}

func newEventRouter(svc *eventServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEventHandler(svc)
	r := gin.New()
	r.GET("/events", h.List)
	r.GET("/events/:id", h.Get)
	r.POST("/events", h.Create)
	r.POST("/events/form", h.CreateFromForm)
	r.PUT("/events/:id", h.Update)
	r.DELETE("/events/:id", h.Delete)
	return r
}

func serve(r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestEventHandlerListParsesRange(t *testing.T) {
	svc := &eventServiceMock{events: []models.CalendarEvent{{ID: "a", Title: "Standup"}}}
	w := serve(newEventRouter(svc), http.MethodGet, "/events?from=2024-01-15&to=2024-01-21T23:59:59Z&page_size=10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastFilter.From)
	require.NotNil(t, svc.lastFilter.To)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *svc.lastFilter.From)
	assert.Equal(t, time.Date(2024, 1, 21, 23, 59, 59, 0, time.UTC), svc.lastFilter.To.UTC())
	assert.Equal(t, 10, svc.lastFilter.PageSize)
	assert.Equal(t, 1, svc.lastFilter.Page)

	var payload struct {
		Data []models.CalendarEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "Standup", payload.Data[0].Title)
}

func TestEventHandlerListRejectsBadDate(t *testing.T) {
	w := serve(newEventRouter(&eventServiceMock{}), http.MethodGet, "/events?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(t, w))
}

func TestEventHandlerGetNotFound(t *testing.T) {
	w := serve(newEventRouter(&eventServiceMock{}), http.MethodGet, "/events/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(t, w))
}

func TestEventHandlerCreate(t *testing.T) {
	svc := &eventServiceMock{}
	body := []byte(`{"title":"Review","start":"2024-01-15T09:00:00Z","end":"2024-01-15T10:00:00Z"}`)
	w := serve(newEventRouter(svc), http.MethodPost, "/events", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Review", svc.lastCreate.Title)
	assert.Equal(t, time.Hour, svc.lastCreate.End.Sub(svc.lastCreate.Start))
}

func TestEventHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEventHandler(&eventServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventHandlerCreateFromFormPropagatesValidation(t *testing.T) {
	svc := &eventServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "End time must be after start time")}
	body, _ := json.Marshal(service.FormEventRequest{Title: "x", Date: "2024-01-15", StartTime: "10:00", EndTime: "09:00"})
	w := serve(newEventRouter(svc), http.MethodPost, "/events/form", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "10:00", svc.lastForm.StartTime)
	assert.Contains(t, w.Body.String(), "End time must be after start time")
}

func TestEventHandlerUpdatePartial(t *testing.T) {
	svc := &eventServiceMock{}
	w := serve(newEventRouter(svc), http.MethodPut, "/events/abc", []byte(`{"title":"Renamed"}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastUpdate.Title)
	assert.Equal(t, "Renamed", *svc.lastUpdate.Title)
	assert.Nil(t, svc.lastUpdate.Start)
}

func TestEventHandlerDelete(t *testing.T) {
	svc := &eventServiceMock{}
	w := serve(newEventRouter(svc), http.MethodDelete, "/events/abc", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "abc", svc.deleted)
}
