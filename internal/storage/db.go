package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a database connection and provides record operations for the
// mission-control core.
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection using the provided DSN.
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Successfully connected to PostgreSQL database")

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		slog.Info("Closing database connection")
		return db.conn.Close()
	}
	return nil
}

// InitSchema creates the tables and indexes the core relies on. It is safe to
// call on every startup.
func (db *DB) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS activity_events (
			event_id      UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			ts            BIGINT NOT NULL,
			source        TEXT NOT NULL,
			kind          TEXT NOT NULL,
			status        TEXT NOT NULL,
			summary       TEXT NOT NULL,
			details       JSONB,
			related_paths TEXT[] NOT NULL DEFAULT '{}',
			related_urls  TEXT[] NOT NULL DEFAULT '{}',
			external_id   TEXT,
			severity      TEXT,
			tags          TEXT[] NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS activity_events_by_ts ON activity_events (ts DESC)`,
		`CREATE INDEX IF NOT EXISTS activity_events_by_kind ON activity_events (kind, ts DESC)`,
		`CREATE INDEX IF NOT EXISTS activity_events_by_source ON activity_events (source, ts DESC)`,
		`CREATE INDEX IF NOT EXISTS activity_events_by_status ON activity_events (status, ts DESC)`,
		`CREATE INDEX IF NOT EXISTS activity_events_by_external_id ON activity_events (external_id)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			alert_id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at        BIGINT NOT NULL,
			severity          TEXT NOT NULL,
			status            TEXT NOT NULL,
			title             TEXT NOT NULL,
			body              TEXT NOT NULL,
			activity_event_id TEXT,
			external_id       TEXT,
			sent_at           BIGINT,
			send_status       TEXT,
			send_error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS alerts_by_created_at ON alerts (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS alerts_by_sent_at ON alerts (sent_at)`,
		`CREATE INDEX IF NOT EXISTS alerts_by_external_id ON alerts (external_id)`,
		`CREATE TABLE IF NOT EXISTS scheduled_items (
			item_id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			system          TEXT NOT NULL,
			name            TEXT NOT NULL,
			schedule_text   TEXT NOT NULL,
			next_run_at     BIGINT NOT NULL,
			enabled         BOOLEAN NOT NULL,
			command         TEXT NOT NULL,
			external_id     TEXT NOT NULL,
			last_indexed_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS scheduled_items_by_next_run ON scheduled_items (next_run_at)`,
		`CREATE INDEX IF NOT EXISTS scheduled_items_by_system ON scheduled_items (system)`,
		`CREATE INDEX IF NOT EXISTS scheduled_items_by_external ON scheduled_items (system, external_id)`,
		`CREATE TABLE IF NOT EXISTS search_items (
			search_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			kind      TEXT NOT NULL,
			title     TEXT NOT NULL,
			content   TEXT NOT NULL,
			source    TEXT NOT NULL,
			ref_id    TEXT,
			path      TEXT,
			url       TEXT,
			ts        BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS search_items_by_kind_ref ON search_items (kind, ref_id)`,
		`CREATE INDEX IF NOT EXISTS search_items_by_source ON search_items (source)`,
		`CREATE INDEX IF NOT EXISTS search_items_content_fts
			ON search_items USING GIN (to_tsvector('simple', content))`,
		`CREATE TABLE IF NOT EXISTS workspace_docs (
			doc_id     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			path       TEXT NOT NULL,
			content    TEXT NOT NULL,
			updated_at BIGINT NOT NULL,
			source     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS workspace_docs_by_source ON workspace_docs (source)`,
		`CREATE INDEX IF NOT EXISTS workspace_docs_by_path ON workspace_docs (path)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
