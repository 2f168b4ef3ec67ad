package handlers

import (
	"context"
	"errors"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/metrics"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

type fakeIngestor struct {
	outcome activity.Outcome
	err     error
	got     *storage.ActivityEvent
}

func (f *fakeIngestor) Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error) {
	f.got = ev
	return f.outcome, f.err
}

type fakeEventReader struct {
	events []*storage.ActivityEvent
	facets *storage.ActivityFacets
	latest *storage.ActivityEvent
	filter storage.ActivityFilter
	err    error
}

func (f *fakeEventReader) ListEvents(ctx context.Context, filter storage.ActivityFilter) ([]*storage.ActivityEvent, error) {
	f.filter = filter
	return f.events, f.err
}

func (f *fakeEventReader) ListEventFacets(ctx context.Context) (*storage.ActivityFacets, error) {
	return f.facets, f.err
}

func (f *fakeEventReader) LatestEventByKind(ctx context.Context, kind string) (*storage.ActivityEvent, error) {
	return f.latest, f.err
}

type fakeAlertLister struct {
	alerts  []*storage.Alert
	pending []*storage.Alert
	err     error
}

func (f *fakeAlertLister) List(ctx context.Context, limit int) ([]*storage.Alert, error) {
	return f.alerts, f.err
}

func (f *fakeAlertLister) ListPending(ctx context.Context, limit int) ([]*storage.Alert, error) {
	return f.pending, f.err
}

type fakeDispatcher struct {
	sent int
	err  error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context) (int, error) {
	return f.sent, f.err
}

type fakeRefresher struct {
	processed int
}

func (f *fakeRefresher) Refresh(ctx context.Context) int {
	return f.processed
}

type fakeScheduleLister struct {
	items []*storage.ScheduledItem
	start int64
	end   int64
	err   error
}

func (f *fakeScheduleLister) ListScheduledItems(ctx context.Context, start, end int64) ([]*storage.ScheduledItem, error) {
	f.start, f.end = start, end
	return f.items, f.err
}

type fakeSearcher struct {
	items []*storage.SearchItem
	text  string
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, text, kind, source string, limit int) ([]*storage.SearchItem, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	if f.items == nil {
		return []*storage.SearchItem{}, nil
	}
	return f.items, nil
}

type fakeWorkspaceIndexer struct {
	indexed int
	err     error
}

func (f *fakeWorkspaceIndexer) Index(ctx context.Context) (int, error) {
	return f.indexed, f.err
}

type fakeMetricsReader struct {
	snapshots map[string]*metrics.Snapshot
}

func (f *fakeMetricsReader) GetServiceMetrics(ctx context.Context, serviceName string) (*metrics.Snapshot, error) {
	if s, ok := f.snapshots[serviceName]; ok {
		return s, nil
	}
	return nil, errors.New("no metrics found")
}

func (f *fakeMetricsReader) GetAllServiceMetrics(ctx context.Context) (map[string]*metrics.Snapshot, error) {
	out := make(map[string]*metrics.Snapshot, len(f.snapshots))
	for k, v := range f.snapshots {
		out[k] = v
	}
	return out, nil
}
