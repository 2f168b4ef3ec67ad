package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// GetAlertByExternalID retrieves an alert by its idempotency key.
// Returns (nil, nil) when no alert carries that key.
func (db *DB) GetAlertByExternalID(ctx context.Context, externalID string) (*Alert, error) {
	query := alertSelect + ` WHERE external_id = $1 LIMIT 1`
	row := db.conn.QueryRowContext(ctx, query, externalID)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert by external id: %w", err)
	}
	return alert, nil
}

// InsertAlert persists a new alert and returns its generated id.
func (db *DB) InsertAlert(ctx context.Context, alert *Alert) (string, error) {
	query := `
		INSERT INTO alerts (created_at, severity, status, title, body, activity_event_id, external_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		RETURNING alert_id::text
	`
	var id string
	err := db.conn.QueryRowContext(ctx, query,
		alert.CreatedAt,
		alert.Severity,
		alert.Status,
		alert.Title,
		alert.Body,
		alert.ActivityEventID,
		alert.ExternalID,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert alert: %w", err)
	}
	return id, nil
}

// ListAlerts retrieves alerts most-recently-created first.
func (db *DB) ListAlerts(ctx context.Context, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 200
	}
	query := alertSelect + ` ORDER BY created_at DESC LIMIT $1`
	return db.queryAlerts(ctx, query, limit)
}

// ListPendingAlerts retrieves alerts without a send outcome,
// most-recently-created first, truncated to limit.
func (db *DB) ListPendingAlerts(ctx context.Context, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := alertSelect + ` WHERE sent_at IS NULL ORDER BY created_at DESC LIMIT $1`
	return db.queryAlerts(ctx, query, limit)
}

// MarkAlertResult records the outcome of a dispatch attempt. Calling it again
// for the same alert overwrites the previous outcome.
func (db *DB) MarkAlertResult(ctx context.Context, id string, sentAt int64, sendStatus, sendError string) error {
	query := `
		UPDATE alerts
		SET sent_at = $2, send_status = $3, send_error = NULLIF($4, '')
		WHERE alert_id = $1::uuid
	`
	result, err := db.conn.ExecContext(ctx, query, id, sentAt, sendStatus, sendError)
	if err != nil {
		return fmt.Errorf("failed to mark alert result: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert not found: %s", id)
	}
	return nil
}

const alertSelect = `
	SELECT alert_id, created_at, severity, status, title, body,
	       COALESCE(activity_event_id, ''), COALESCE(external_id, ''),
	       COALESCE(sent_at, 0), COALESCE(send_status, ''), COALESCE(send_error, '')
	FROM alerts`

func (db *DB) queryAlerts(ctx context.Context, query string, args ...any) ([]*Alert, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}
	return alerts, nil
}

func scanAlert(row rowScanner) (*Alert, error) {
	var alert Alert
	err := row.Scan(
		&alert.ID,
		&alert.CreatedAt,
		&alert.Severity,
		&alert.Status,
		&alert.Title,
		&alert.Body,
		&alert.ActivityEventID,
		&alert.ExternalID,
		&alert.SentAt,
		&alert.SendStatus,
		&alert.SendError,
	)
	if err != nil {
		return nil, err
	}
	return &alert, nil
}
