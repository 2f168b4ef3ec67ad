package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// GetScheduledItem retrieves the scheduled item keyed by (system, externalID).
// Returns (nil, nil) when none exists.
func (db *DB) GetScheduledItem(ctx context.Context, system, externalID string) (*ScheduledItem, error) {
	query := scheduledItemSelect + ` WHERE system = $1 AND external_id = $2 LIMIT 1`
	row := db.conn.QueryRowContext(ctx, query, system, externalID)
	item, err := scanScheduledItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled item: %w", err)
	}
	return item, nil
}

// InsertScheduledItem persists a new scheduled item and returns its id.
func (db *DB) InsertScheduledItem(ctx context.Context, item *ScheduledItem) (string, error) {
	query := `
		INSERT INTO scheduled_items (system, name, schedule_text, next_run_at, enabled, command, external_id, last_indexed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING item_id::text
	`
	var id string
	err := db.conn.QueryRowContext(ctx, query,
		item.System,
		item.Name,
		item.ScheduleText,
		item.NextRunAt,
		item.Enabled,
		item.Command,
		item.ExternalID,
		item.LastIndexedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert scheduled item: %w", err)
	}
	return id, nil
}

// UpdateScheduledItem overwrites all fields of an existing scheduled item.
func (db *DB) UpdateScheduledItem(ctx context.Context, id string, item *ScheduledItem) error {
	query := `
		UPDATE scheduled_items
		SET system = $2, name = $3, schedule_text = $4, next_run_at = $5,
		    enabled = $6, command = $7, external_id = $8, last_indexed_at = $9
		WHERE item_id = $1::uuid
	`
	result, err := db.conn.ExecContext(ctx, query,
		id,
		item.System,
		item.Name,
		item.ScheduleText,
		item.NextRunAt,
		item.Enabled,
		item.Command,
		item.ExternalID,
		item.LastIndexedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update scheduled item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("scheduled item not found: %s", id)
	}
	return nil
}

// ListScheduledItems retrieves items with start <= next_run_at <= end,
// ordered by next run.
func (db *DB) ListScheduledItems(ctx context.Context, start, end int64) ([]*ScheduledItem, error) {
	query := scheduledItemSelect + ` WHERE next_run_at >= $1 AND next_run_at <= $2 ORDER BY next_run_at ASC`
	rows, err := db.conn.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled items: %w", err)
	}
	defer rows.Close()

	var items []*ScheduledItem
	for rows.Next() {
		item, err := scanScheduledItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled items: %w", err)
	}
	return items, nil
}

const scheduledItemSelect = `
	SELECT item_id, system, name, schedule_text, next_run_at, enabled, command, external_id, last_indexed_at
	FROM scheduled_items`

func scanScheduledItem(row rowScanner) (*ScheduledItem, error) {
	var item ScheduledItem
	err := row.Scan(
		&item.ID,
		&item.System,
		&item.Name,
		&item.ScheduleText,
		&item.NextRunAt,
		&item.Enabled,
		&item.Command,
		&item.ExternalID,
		&item.LastIndexedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
