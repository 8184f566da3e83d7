package eventstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/weekcal-api/internal/models"
)

// envelope is the response wrapper written by the API.
type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *remoteError           `json:"error"`
	Pagination json.RawMessage        `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// wireEvent is the strict shape of one event record on the wire.
type wireEvent struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title" validate:"required"`
	Start     time.Time  `json:"start" validate:"required"`
	End       time.Time  `json:"end" validate:"required,gtfield=Start"`
	Color     string     `json:"color" validate:"required"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (w wireEvent) toModel() models.CalendarEvent {
	event := models.CalendarEvent{
		ID:    w.ID,
		Title: w.Title,
		Start: w.Start,
		End:   w.End,
		Color: w.Color,
	}
	if w.CreatedAt != nil {
		event.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		event.UpdatedAt = *w.UpdatedAt
	}
	return event
}

type decoder struct {
	validate *validator.Validate
}

func (d decoder) strict(raw []byte, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func (d decoder) event(raw []byte) (models.CalendarEvent, error) {
	var w wireEvent
	if err := d.strict(raw, &w); err != nil {
		return models.CalendarEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if err := d.validate.Struct(w); err != nil {
		return models.CalendarEvent{}, fmt.Errorf("invalid event record: %w", err)
	}
	return w.toModel(), nil
}

func (d decoder) events(raw []byte) ([]models.CalendarEvent, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode event list: %w", err)
	}
	events := make([]models.CalendarEvent, 0, len(records))
	for i, record := range records {
		event, err := d.event(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, event)
	}
	return events, nil
}
