package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS calendar_events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	start_at TIMESTAMPTZ NOT NULL,
	end_at TIMESTAMPTZ NOT NULL,
	color TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	CHECK (end_at > start_at)
)`

const sqliteSchema = `CREATE TABLE IF NOT EXISTS calendar_events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	start_at DATETIME NOT NULL,
	end_at DATETIME NOT NULL,
	color TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const startIndex = `CREATE INDEX IF NOT EXISTS idx_calendar_events_start_at ON calendar_events (start_at)`

// EnsureSchema creates the event table and its index when they are missing.
func EnsureSchema(db *sqlx.DB) error {
	schema := postgresSchema
	if db.DriverName() == "sqlite3" {
		schema = sqliteSchema
	}
	for _, stmt := range []string{schema, startIndex} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
