package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/weekcal-api/internal/models"
)

const eventColumns = "id, title, start_at, end_at, color, created_at, updated_at"

// EventRepository persists calendar events. Queries use "?" placeholders and
// are rebound for the active driver, so Postgres and SQLite share one code path.
// Timestamps are written in UTC.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository instantiates an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events overlapping the filter range, ordered by start.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, int, error) {
	base := "FROM calendar_events WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.To != nil {
		conditions = append(conditions, "start_at < ?")
		args = append(args, filter.To.UTC())
	}
	if filter.From != nil {
		conditions = append(conditions, "end_at > ?")
		args = append(args, filter.From.UTC())
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_at ASC, id ASC", eventColumns, base)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		size := filter.PageSize
		if size > 500 {
			size = 500
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)
	}

	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) "+base), args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	return events, total, nil
}

// FindByID loads an event by identifier. Missing rows yield sql.ErrNoRows.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	query := r.db.Rebind("SELECT " + eventColumns + " FROM calendar_events WHERE id = ?")
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event, assigning its id and timestamps.
func (r *EventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO calendar_events (id, title, start_at, end_at, color, created_at, updated_at) VALUES (:id, :title, :start_at, :end_at, :color, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, utcRow(*event)); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an event. Missing rows yield sql.ErrNoRows.
func (r *EventRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()

	const query = `UPDATE calendar_events SET title = :title, start_at = :start_at, end_at = :end_at, color = :color, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, utcRow(*event))
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return expectAffected(res)
}

// Delete removes an event. Missing rows yield sql.ErrNoRows.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM calendar_events WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func utcRow(event models.CalendarEvent) models.CalendarEvent {
	event.Start = event.Start.UTC()
	event.End = event.End.UTC()
	event.CreatedAt = event.CreatedAt.UTC()
	event.UpdatedAt = event.UpdatedAt.UTC()
	return event
}
