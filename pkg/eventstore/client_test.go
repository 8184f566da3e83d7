package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekcal-api/internal/models"
	"github.com/noah-isme/weekcal-api/pkg/middleware/requestid"
)

const standupJSON = `{"id":"1","title":"Standup","start":"2024-01-15T09:00:00Z","end":"2024-01-15T09:30:00Z","color":"#FF6B6B","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:5000/api")
	assert.Error(t, err)
}

func TestClientList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/events", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[`+standupJSON+`],"pagination":{"page":1,"page_size":1,"total_count":1}}`)
	})

	events, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, 30*time.Minute, events[0].Duration())
}

func TestClientListRejectsMalformedRecord(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"id":"1","title":"x","start":"2024-01-15T09:00:00Z","end":"2024-01-15T10:00:00Z","color":"#fff","location":"HQ"}`,
		"missing title": `{"id":"1","start":"2024-01-15T09:00:00Z","end":"2024-01-15T10:00:00Z","color":"#fff"}`,
		"end before":    `{"id":"1","title":"x","start":"2024-01-15T10:00:00Z","end":"2024-01-15T09:00:00Z","color":"#fff"}`,
		"bad time":      `{"id":"1","title":"x","start":"monday","end":"2024-01-15T09:00:00Z","color":"#fff"}`,
	}
	for name, record := range cases {
		record := record
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"data":[`+standupJSON+`,`+record+`]}`)
			})
			events, err := client.List(context.Background())
			require.Error(t, err)
			assert.Nil(t, events)
			var storeErr *StoreError
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, "fetch events", storeErr.Op)
		})
	}
}

func TestClientCreateSendsDraft(t *testing.T) {
	var received map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "req-7", r.Header.Get(requestid.Header))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":`+standupJSON+`}`)
	}, WithToken("secret"))

	ctx := requestid.WithContext(context.Background(), "req-7")
	draft := models.EventDraft{
		Title: "Standup",
		Start: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		Color: "#FF6B6B",
	}
	event, err := client.Create(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "1", event.ID)
	assert.Equal(t, "Standup", received["title"])
	assert.Equal(t, "2024-01-15T09:00:00Z", received["start"])
}

func TestClientUpdateSendsOnlyChangedFields(t *testing.T) {
	var received map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/events/1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = io.WriteString(w, `{"data":`+standupJSON+`}`)
	})

	title := "Standup"
	_, err := client.Update(context.Background(), "1", models.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "Standup"}, received)
}

func TestClientErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":"INTERNAL_ERROR","message":"database unavailable","status":500}}`)
	})

	_, err := client.Create(context.Background(), models.EventDraft{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, "Failed to create event: 500 Internal Server Error: database unavailable", err.Error())
}

func TestClientDeleteNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "not found")
	})

	err := client.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Failed to delete event: 404 Not Found: not found", err.Error())
}

func TestClientDeleteNoContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, client.Delete(context.Background(), "1"))
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := New(srv.URL)
	require.NoError(t, err)
	srv.Close()

	_, err = client.Get(context.Background(), "1")
	require.Error(t, err)
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, 0, storeErr.Status)
	assert.Contains(t, err.Error(), "Failed to fetch event: ")
}
