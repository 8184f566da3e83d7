// Package eventstore is an HTTP client for the event REST routes.
package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/weekcal-api/internal/models"
	"github.com/noah-isme/weekcal-api/pkg/middleware/requestid"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// Client talks to the event store over JSON.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
	decode  decoder
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 15s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends the token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client for the store rooted at baseURL, e.g. http://localhost:5000.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("eventstore: invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
		decode:  decoder{validate: validator.New()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every event.
func (c *Client) List(ctx context.Context) ([]models.CalendarEvent, error) {
	const op = "fetch events"
	data, err := c.do(ctx, op, http.MethodGet, "/api/events", nil)
	if err != nil {
		return nil, err
	}
	events, err := c.decode.events(data)
	if err != nil {
		return nil, c.fail(op, &StoreError{Op: op, Message: "malformed response", Err: err})
	}
	return events, nil
}

// Get fetches one event.
func (c *Client) Get(ctx context.Context, id string) (*models.CalendarEvent, error) {
	return c.one(ctx, "fetch event", http.MethodGet, eventPath(id), nil)
}

// Create stores a new event; the store assigns its id.
func (c *Client) Create(ctx context.Context, draft models.EventDraft) (*models.CalendarEvent, error) {
	return c.one(ctx, "create event", http.MethodPost, "/api/events", draft)
}

// Update sends a partial update and returns the stored record.
func (c *Client) Update(ctx context.Context, id string, patch models.EventPatch) (*models.CalendarEvent, error) {
	return c.one(ctx, "update event", http.MethodPut, eventPath(id), patch)
}

// Delete removes an event.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete event", http.MethodDelete, eventPath(id), nil)
	return err
}

func (c *Client) one(ctx context.Context, op, method, path string, body interface{}) (*models.CalendarEvent, error) {
	data, err := c.do(ctx, op, method, path, body)
	if err != nil {
		return nil, err
	}
	event, err := c.decode.event(data)
	if err != nil {
		return nil, c.fail(op, &StoreError{Op: op, Message: "malformed response", Err: err})
	}
	return &event, nil
}

// do performs the request and returns the envelope data of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, c.fail(op, &StoreError{Op: op, Message: "encode request", Err: err})
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, c.fail(op, &StoreError{Op: op, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(op, &StoreError{Op: op, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.fail(op, &StoreError{Op: op, Status: resp.StatusCode, Message: remoteMessage(raw)})
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, c.fail(op, &StoreError{Op: op, Status: resp.StatusCode, Message: "malformed response", Err: err})
	}
	return env.Data, nil
}

func (c *Client) fail(op string, err *StoreError) error {
	c.logger.Warn("event store call failed",
		zap.String("op", op),
		zap.Int("status", err.Status),
		zap.Error(err),
	)
	return err
}

// remoteMessage extracts the error message of an envelope, falling back to
// the raw body text.
func remoteMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

func eventPath(id string) string {
	return "/api/events/" + url.PathEscape(id)
}
