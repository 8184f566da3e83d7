package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekcal-api/internal/models"
)

func newEventRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var eventRowColumns = []string{"id", "title", "start_at", "end_at", "color", "created_at", "updated_at"}

func TestEventRepositoryList(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("e1", "Standup", start, start.Add(30*time.Minute), "#FF6B6B", start, start)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, start_at, end_at, color, created_at, updated_at FROM calendar_events WHERE 1=1 ORDER BY start_at ASC, id ASC")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM calendar_events WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.EventFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Standup", list[0].Title)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListRangeAndPage(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	loc := time.FixedZone("UTC+7", 7*3600)
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, loc)
	to := time.Date(2024, 1, 22, 0, 0, 0, 0, loc)

	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_events WHERE 1=1 AND start_at < ? AND end_at > ? ORDER BY start_at ASC, id ASC LIMIT 10 OFFSET 10")).
		WithArgs(to.UTC(), from.UTC()).
		WillReturnRows(sqlmock.NewRows(eventRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM calendar_events WHERE 1=1 AND start_at < ? AND end_at > ?")).
		WithArgs(to.UTC(), from.UTC()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	list, total, err := repo.List(context.Background(), models.EventFilter{From: &from, To: &to, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 12, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryRebindsForPostgres(t *testing.T) {
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer raw.Close()
	repo := NewEventRepository(sqlx.NewDb(raw, "postgres"))

	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_events WHERE id = $1")).
		WithArgs("e1").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "e1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	loc := time.FixedZone("UTC+7", 7*3600)
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, loc)
	event := &models.CalendarEvent{Title: "Standup", Start: start, End: start.Add(time.Hour), Color: "#4ECDC4"}

	mock.ExpectExec("INSERT INTO calendar_events").
		WithArgs(sqlmock.AnyArg(), "Standup", start.UTC(), start.Add(time.Hour).UTC(), "#4ECDC4", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	assert.Equal(t, loc, event.Start.Location())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	event := &models.CalendarEvent{ID: "e1", Title: "Retro", Start: start, End: start.Add(time.Hour), Color: "#45B7D1"}

	mock.ExpectExec("UPDATE calendar_events SET title").
		WithArgs("Retro", start, start.Add(time.Hour), "#45B7D1", sqlmock.AnyArg(), "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), event))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calendar_events WHERE id = ?")).
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "e1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryMissingRows(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE calendar_events").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &models.CalendarEvent{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectExec("DELETE FROM calendar_events").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
