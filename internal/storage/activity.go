package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lib/pq"
)

// GetEventByExternalID retrieves an activity event by its caller-supplied
// idempotency key. Returns (nil, nil) when no event carries that key.
func (db *DB) GetEventByExternalID(ctx context.Context, externalID string) (*ActivityEvent, error) {
	query := `
		SELECT event_id, ts, source, kind, status, summary, details, related_paths, related_urls,
		       COALESCE(external_id, ''), COALESCE(severity, ''), tags
		FROM activity_events
		WHERE external_id = $1
		LIMIT 1
	`
	row := db.conn.QueryRowContext(ctx, query, externalID)
	ev, err := scanActivityEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity event by external id: %w", err)
	}
	return ev, nil
}

// InsertEvent persists a new activity event and returns its generated id.
func (db *DB) InsertEvent(ctx context.Context, ev *ActivityEvent) (string, error) {
	detailsJSON, err := marshalDetails(ev.Details)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO activity_events (ts, source, kind, status, summary, details, related_paths, related_urls, external_id, severity, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11)
		RETURNING event_id::text
	`
	var id string
	err = db.conn.QueryRowContext(ctx, query,
		ev.Ts,
		ev.Source,
		ev.Kind,
		ev.Status,
		ev.Summary,
		detailsJSON,
		pq.Array(ev.RelatedPaths),
		pq.Array(ev.RelatedUrls),
		ev.ExternalID,
		ev.Severity,
		pq.Array(ev.Tags),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert activity event: %w", err)
	}
	return id, nil
}

// ListEvents retrieves activity events newest-first, optionally filtered by
// kind, status, and source.
func (db *DB) ListEvents(ctx context.Context, filter ActivityFilter) ([]*ActivityEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT event_id, ts, source, kind, status, summary, details, related_paths, related_urls,
		       COALESCE(external_id, ''), COALESCE(severity, ''), tags
		FROM activity_events
		WHERE ($1 = '' OR kind = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR source = $3)
		ORDER BY ts DESC
		LIMIT $4
	`
	rows, err := db.conn.QueryContext(ctx, query, filter.Kind, filter.Status, filter.Source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer rows.Close()

	var events []*ActivityEvent
	for rows.Next() {
		ev, err := scanActivityEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity events: %w", err)
	}
	return events, nil
}

// LatestEventByKind retrieves the most recent event of the given kind.
// Returns (nil, nil) when none exists.
func (db *DB) LatestEventByKind(ctx context.Context, kind string) (*ActivityEvent, error) {
	query := `
		SELECT event_id, ts, source, kind, status, summary, details, related_paths, related_urls,
		       COALESCE(external_id, ''), COALESCE(severity, ''), tags
		FROM activity_events
		WHERE kind = $1
		ORDER BY ts DESC
		LIMIT 1
	`
	row := db.conn.QueryRowContext(ctx, query, kind)
	ev, err := scanActivityEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest event by kind: %w", err)
	}
	return ev, nil
}

// ListEventFacets returns the distinct kinds, statuses, and sources across the
// 500 most recent events, each sorted alphabetically.
func (db *DB) ListEventFacets(ctx context.Context) (*ActivityFacets, error) {
	query := `
		SELECT kind, status, source
		FROM (SELECT kind, status, source FROM activity_events ORDER BY ts DESC LIMIT 500) recent
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity facets: %w", err)
	}
	defer rows.Close()

	kinds := make(map[string]bool)
	statuses := make(map[string]bool)
	sources := make(map[string]bool)
	for rows.Next() {
		var kind, status, source string
		if err := rows.Scan(&kind, &status, &source); err != nil {
			return nil, fmt.Errorf("failed to scan activity facets: %w", err)
		}
		kinds[kind] = true
		statuses[status] = true
		sources[source] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity facets: %w", err)
	}

	return &ActivityFacets{
		Kinds:    sortedKeys(kinds),
		Statuses: sortedKeys(statuses),
		Sources:  sortedKeys(sources),
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivityEvent(row rowScanner) (*ActivityEvent, error) {
	var ev ActivityEvent
	var detailsJSON sql.NullString
	err := row.Scan(
		&ev.ID,
		&ev.Ts,
		&ev.Source,
		&ev.Kind,
		&ev.Status,
		&ev.Summary,
		&detailsJSON,
		pq.Array(&ev.RelatedPaths),
		pq.Array(&ev.RelatedUrls),
		&ev.ExternalID,
		&ev.Severity,
		pq.Array(&ev.Tags),
	)
	if err != nil {
		return nil, err
	}
	ev.Details = unmarshalDetails(detailsJSON, "event_id", ev.ID)
	return &ev, nil
}

func marshalDetails(details any) ([]byte, error) {
	if details == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal details: %w", err)
	}
	return data, nil
}

// unmarshalDetails deserializes a details JSON column, logging and returning
// an empty object on malformed data rather than failing the read.
func unmarshalDetails(detailsJSON sql.NullString, warnAttrs ...any) any {
	if !detailsJSON.Valid || detailsJSON.String == "" {
		return map[string]any{}
	}
	var details any
	if err := json.Unmarshal([]byte(detailsJSON.String), &details); err != nil {
		slog.Warn("Failed to unmarshal details JSON", append([]any{"error", err}, warnAttrs...)...)
		return map[string]any{}
	}
	return details
}
