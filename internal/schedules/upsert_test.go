package schedules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

type fakeItemStore struct {
	items     map[string]*storage.ScheduledItem // keyed by system:externalId
	nextID    int
	getErr    error
	insertErr error
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[string]*storage.ScheduledItem{}}
}

func (f *fakeItemStore) key(system, externalID string) string {
	return system + ":" + externalID
}

func (f *fakeItemStore) GetScheduledItem(ctx context.Context, system, externalID string) (*storage.ScheduledItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[f.key(system, externalID)]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItemStore) InsertScheduledItem(ctx context.Context, item *storage.ScheduledItem) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.nextID++
	copied := *item
	copied.ID = fmt.Sprintf("item-%d", f.nextID)
	f.items[f.key(item.System, item.ExternalID)] = &copied
	return copied.ID, nil
}

func (f *fakeItemStore) UpdateScheduledItem(ctx context.Context, id string, item *storage.ScheduledItem) error {
	for key, existing := range f.items {
		if existing.ID == id {
			copied := *item
			copied.ID = id
			delete(f.items, key)
			f.items[f.key(item.System, item.ExternalID)] = &copied
			return nil
		}
	}
	return errors.New("scheduled item not found")
}

type fakeSearchStore struct {
	items     []*storage.SearchItem
	deleteErr error
}

func (f *fakeSearchStore) InsertSearchItem(ctx context.Context, item *storage.SearchItem) error {
	copied := *item
	f.items = append(f.items, &copied)
	return nil
}

func (f *fakeSearchStore) DeleteSearchItems(ctx context.Context, kind, refID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.items[:0]
	for _, item := range f.items {
		if item.Kind == kind && item.RefID == refID {
			continue
		}
		kept = append(kept, item)
	}
	f.items = kept
	return nil
}

func newTestUpserter(store *fakeItemStore, search *fakeSearchStore) *Upserter {
	u := NewUpserter(store, search)
	u.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return u
}

func TestUpsertInsertsNewItem(t *testing.T) {
	store := newFakeItemStore()
	search := &fakeSearchStore{}
	u := newTestUpserter(store, search)

	processed := u.Upsert(context.Background(), []Candidate{{
		System:       "openclaw",
		Name:         "Nightly export",
		ScheduleText: "0 2 * * *",
		NextRunAt:    1000,
		Enabled:      true,
		Command:      "export.sh",
		ExternalID:   "job-1",
	}})
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}

	item := store.items["openclaw:job-1"]
	if item == nil {
		t.Fatal("item was not inserted")
	}
	if item.LastIndexedAt != 1_700_000_000_000 {
		t.Errorf("lastIndexedAt = %d, want injected now", item.LastIndexedAt)
	}

	if len(search.items) != 1 {
		t.Fatalf("search items = %d, want 1", len(search.items))
	}
	got := search.items[0]
	if got.Kind != "scheduled_item" || got.RefID != "openclaw:job-1" {
		t.Errorf("search projection key = %s/%s", got.Kind, got.RefID)
	}
	if got.Title != "openclaw: Nightly export" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Content != "openclaw Nightly export 0 2 * * * export.sh enabled" {
		t.Errorf("content = %q", got.Content)
	}
}

func TestUpsertTwiceKeepsOneRowAndOneProjection(t *testing.T) {
	store := newFakeItemStore()
	search := &fakeSearchStore{}
	u := newTestUpserter(store, search)

	c := Candidate{System: "openclaw", Name: "Job", ScheduleText: "0 * * * *", NextRunAt: 1000, Enabled: true, ExternalID: "job-1"}
	u.Upsert(context.Background(), []Candidate{c})

	c.NextRunAt = 2000
	c.Enabled = false
	processed := u.Upsert(context.Background(), []Candidate{c})
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}

	if len(store.items) != 1 {
		t.Fatalf("stored items = %d, want 1", len(store.items))
	}
	item := store.items["openclaw:job-1"]
	if item.NextRunAt != 2000 {
		t.Errorf("nextRunAt = %d, want the newer 2000", item.NextRunAt)
	}
	if item.Enabled {
		t.Error("enabled flag not overwritten")
	}

	if len(search.items) != 1 {
		t.Fatalf("search items = %d, want exactly 1 after re-upsert", len(search.items))
	}
	if !strings.Contains(search.items[0].Content, "disabled") {
		t.Errorf("refreshed projection content = %q, want disabled marker", search.items[0].Content)
	}
}

func TestUpsertAbsorbsPerItemFailures(t *testing.T) {
	store := newFakeItemStore()
	store.insertErr = errors.New("db down")
	u := newTestUpserter(store, &fakeSearchStore{})

	processed := u.Upsert(context.Background(), []Candidate{{System: "openclaw", ExternalID: "job-1"}})
	if processed != 0 {
		t.Errorf("processed = %d, want 0 when insert fails", processed)
	}
}

func TestUpsertWritesProjectionEvenWhenDeleteFails(t *testing.T) {
	store := newFakeItemStore()
	search := &fakeSearchStore{deleteErr: errors.New("search down")}
	u := newTestUpserter(store, search)

	processed := u.Upsert(context.Background(), []Candidate{{System: "openclaw", Name: "Job", ExternalID: "job-1"}})
	if processed != 1 {
		t.Fatalf("processed = %d, want 1 (search is best-effort)", processed)
	}
	if len(search.items) != 1 {
		t.Errorf("search items = %d, want 1", len(search.items))
	}
}
