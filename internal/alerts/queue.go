// Package alerts provides the deduplicating alert queue: enqueue, pending
// retrieval, and send-outcome recording.
package alerts

import (
	"context"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// Store persists alerts with indexed external-id lookup.
type Store interface {
	// GetAlertByExternalID returns (nil, nil) when no alert carries the key.
	GetAlertByExternalID(ctx context.Context, externalID string) (*storage.Alert, error)

	// InsertAlert persists a new alert and returns its generated id.
	InsertAlert(ctx context.Context, alert *storage.Alert) (string, error)

	// ListAlerts returns alerts most-recently-created first.
	ListAlerts(ctx context.Context, limit int) ([]*storage.Alert, error)

	// ListPendingAlerts returns alerts without a send outcome, newest first.
	ListPendingAlerts(ctx context.Context, limit int) ([]*storage.Alert, error)

	// MarkAlertResult records a dispatch outcome for one alert.
	MarkAlertResult(ctx context.Context, id string, sentAt int64, sendStatus, sendError string) error
}

// Queue is the alert queue service.
type Queue struct {
	store Store
	now   func() time.Time
}

// NewQueue creates an alert queue backed by the given store.
func NewQueue(store Store) *Queue {
	return &Queue{store: store, now: time.Now}
}

// Enqueue queues an alert, deduplicating by external id: if an alert with the
// same key exists, its identity is returned and nothing is inserted.
func (q *Queue) Enqueue(ctx context.Context, alert *storage.Alert) (string, error) {
	if alert.ExternalID != "" {
		existing, err := q.store.GetAlertByExternalID(ctx, alert.ExternalID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return existing.ID, nil
		}
	}

	if alert.CreatedAt == 0 {
		alert.CreatedAt = q.now().UnixMilli()
	}
	if alert.Status == "" {
		alert.Status = "queued"
	}
	return q.store.InsertAlert(ctx, alert)
}

// List returns recent alerts, newest first.
func (q *Queue) List(ctx context.Context, limit int) ([]*storage.Alert, error) {
	return q.store.ListAlerts(ctx, limit)
}

// ListPending returns alerts that have not seen a dispatch attempt, newest
// first, truncated to limit.
func (q *Queue) ListPending(ctx context.Context, limit int) ([]*storage.Alert, error) {
	return q.store.ListPendingAlerts(ctx, limit)
}

// MarkResult records the terminal send outcome for one alert. Repeating the
// call for the same id overwrites the outcome; that is permitted but not
// expected in normal operation.
func (q *Queue) MarkResult(ctx context.Context, id string, sentAt int64, sendStatus, sendError string) error {
	return q.store.MarkAlertResult(ctx, id, sentAt, sendStatus, sendError)
}
