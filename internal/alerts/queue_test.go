package alerts

import (
	"context"
	"fmt"
	"testing"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// fakeStore is an in-memory Store for queue tests.
type fakeStore struct {
	alerts  []*storage.Alert
	byExtID map[string]*storage.Alert
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byExtID: make(map[string]*storage.Alert)}
}

func (f *fakeStore) GetAlertByExternalID(ctx context.Context, externalID string) (*storage.Alert, error) {
	return f.byExtID[externalID], nil
}

func (f *fakeStore) InsertAlert(ctx context.Context, alert *storage.Alert) (string, error) {
	f.nextID++
	stored := *alert
	stored.ID = fmt.Sprintf("alert-%03d", f.nextID)
	f.alerts = append(f.alerts, &stored)
	if stored.ExternalID != "" {
		f.byExtID[stored.ExternalID] = &stored
	}
	return stored.ID, nil
}

func (f *fakeStore) ListAlerts(ctx context.Context, limit int) ([]*storage.Alert, error) {
	return f.alerts, nil
}

func (f *fakeStore) ListPendingAlerts(ctx context.Context, limit int) ([]*storage.Alert, error) {
	var pending []*storage.Alert
	for i := len(f.alerts) - 1; i >= 0; i-- {
		if f.alerts[i].SentAt == 0 {
			pending = append(pending, f.alerts[i])
		}
		if limit > 0 && len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (f *fakeStore) MarkAlertResult(ctx context.Context, id string, sentAt int64, sendStatus, sendError string) error {
	for _, a := range f.alerts {
		if a.ID == id {
			a.SentAt = sentAt
			a.SendStatus = sendStatus
			a.SendError = sendError
			return nil
		}
	}
	return fmt.Errorf("alert not found: %s", id)
}

func TestEnqueueIsIdempotent(t *testing.T) {
	store := newFakeStore()
	q := NewQueue(store)

	alert := &storage.Alert{
		Severity:   "high",
		Title:      "🚨 Mission Control alert",
		Body:       "Something failed",
		ExternalID: "alert:cron_run:openclaw:1700000000000",
	}

	first, err := q.Enqueue(context.Background(), alert)
	if err != nil {
		t.Fatalf("first Enqueue() error = %v", err)
	}

	dup := &storage.Alert{
		Severity:   "high",
		Title:      "🚨 Mission Control alert",
		Body:       "Something failed",
		ExternalID: "alert:cron_run:openclaw:1700000000000",
	}
	second, err := q.Enqueue(context.Background(), dup)
	if err != nil {
		t.Fatalf("second Enqueue() error = %v", err)
	}

	if first != second {
		t.Errorf("duplicate enqueue returned different ids: %q vs %q", first, second)
	}
	if len(store.alerts) != 1 {
		t.Errorf("stored alerts = %d, want 1", len(store.alerts))
	}
}

func TestEnqueueAppliesDefaults(t *testing.T) {
	store := newFakeStore()
	q := NewQueue(store)

	id, err := q.Enqueue(context.Background(), &storage.Alert{Severity: "medium", Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if id == "" {
		t.Fatal("Enqueue() returned empty id")
	}
	stored := store.alerts[0]
	if stored.CreatedAt == 0 {
		t.Error("createdAt default not applied")
	}
	if stored.Status != "queued" {
		t.Errorf("status = %q, want queued", stored.Status)
	}
}

func TestMarkResultTransitions(t *testing.T) {
	store := newFakeStore()
	q := NewQueue(store)

	id, err := q.Enqueue(context.Background(), &storage.Alert{Severity: "high", Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	pending, err := q.ListPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	if err := q.MarkResult(context.Background(), id, 1700000001000, "error", "send timed out"); err != nil {
		t.Fatalf("MarkResult() error = %v", err)
	}

	pending, err = q.ListPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after mark = %d, want 0", len(pending))
	}
	if store.alerts[0].SendStatus != "error" || store.alerts[0].SendError != "send timed out" {
		t.Errorf("send outcome not recorded: %+v", store.alerts[0])
	}

	// Idempotent overwrite is permitted.
	if err := q.MarkResult(context.Background(), id, 1700000002000, "sent", ""); err != nil {
		t.Fatalf("repeated MarkResult() error = %v", err)
	}
	if store.alerts[0].SendStatus != "sent" {
		t.Errorf("overwrite not applied: %+v", store.alerts[0])
	}
}
