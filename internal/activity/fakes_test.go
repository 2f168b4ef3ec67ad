package activity

import (
	"context"
	"fmt"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// FakeEventStore is a test fake for EventStore.
type FakeEventStore struct {
	Events    map[string]*storage.ActivityEvent // keyed by generated id
	ByExtID   map[string]string                 // externalId -> id
	InsertErr error
	GetErr    error
	nextID    int
}

func NewFakeEventStore() *FakeEventStore {
	return &FakeEventStore{
		Events:  make(map[string]*storage.ActivityEvent),
		ByExtID: make(map[string]string),
	}
}

func (f *FakeEventStore) GetEventByExternalID(ctx context.Context, externalID string) (*storage.ActivityEvent, error) {
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	id, ok := f.ByExtID[externalID]
	if !ok {
		return nil, nil
	}
	return f.Events[id], nil
}

func (f *FakeEventStore) InsertEvent(ctx context.Context, ev *storage.ActivityEvent) (string, error) {
	if f.InsertErr != nil {
		return "", f.InsertErr
	}
	f.nextID++
	id := fmt.Sprintf("event-%03d", f.nextID)
	stored := *ev
	stored.ID = id
	f.Events[id] = &stored
	if ev.ExternalID != "" {
		f.ByExtID[ev.ExternalID] = id
	}
	return id, nil
}

// FakeAlertEnqueuer is a test fake for AlertEnqueuer.
type FakeAlertEnqueuer struct {
	Enqueued   []*storage.Alert
	EnqueueErr error
	nextID     int
}

func (f *FakeAlertEnqueuer) Enqueue(ctx context.Context, alert *storage.Alert) (string, error) {
	if f.EnqueueErr != nil {
		return "", f.EnqueueErr
	}
	f.nextID++
	f.Enqueued = append(f.Enqueued, alert)
	return fmt.Sprintf("alert-%03d", f.nextID), nil
}

// FakeSearchWriter is a test fake for SearchWriter.
type FakeSearchWriter struct {
	Items     []*storage.SearchItem
	InsertErr error
}

func (f *FakeSearchWriter) InsertSearchItem(ctx context.Context, item *storage.SearchItem) error {
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.Items = append(f.Items, item)
	return nil
}

// FakeMetrics is a test fake for Metrics.
type FakeMetrics struct {
	Ingested     int
	Deduped      int
	AlertsQueued int
	SearchWrites int
}

func (f *FakeMetrics) RecordEventIngested() { f.Ingested++ }
func (f *FakeMetrics) RecordEventDeduped()  { f.Deduped++ }
func (f *FakeMetrics) RecordAlertQueued()   { f.AlertsQueued++ }
func (f *FakeMetrics) RecordSearchWrite()   { f.SearchWrites++ }
