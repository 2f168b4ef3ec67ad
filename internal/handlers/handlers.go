// Package handlers provides the HTTP handlers for the mission-control API.
package handlers

import (
	"context"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/metrics"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// EventIngestor accepts normalized activity events.
type EventIngestor interface {
	Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error)
}

// EventReader queries stored activity events.
type EventReader interface {
	ListEvents(ctx context.Context, filter storage.ActivityFilter) ([]*storage.ActivityEvent, error)
	ListEventFacets(ctx context.Context) (*storage.ActivityFacets, error)

	// LatestEventByKind returns (nil, nil) when no event of the kind exists.
	LatestEventByKind(ctx context.Context, kind string) (*storage.ActivityEvent, error)
}

// AlertLister queries the alert queue.
type AlertLister interface {
	List(ctx context.Context, limit int) ([]*storage.Alert, error)
	ListPending(ctx context.Context, limit int) ([]*storage.Alert, error)
}

// AlertDispatcher drains the pending alert queue.
type AlertDispatcher interface {
	Dispatch(ctx context.Context) (int, error)
}

// ScheduleRefresher runs one schedule collection pass.
type ScheduleRefresher interface {
	Refresh(ctx context.Context) int
}

// ScheduleLister queries scheduled items inside a time window.
type ScheduleLister interface {
	ListScheduledItems(ctx context.Context, start, end int64) ([]*storage.ScheduledItem, error)
}

// Searcher runs full-text queries.
type Searcher interface {
	Search(ctx context.Context, text, kind, source string, limit int) ([]*storage.SearchItem, error)
}

// WorkspaceIndexer runs one workspace indexing pass.
type WorkspaceIndexer interface {
	Index(ctx context.Context) (int, error)
}

// MetricsReader reads published service metrics snapshots.
type MetricsReader interface {
	GetServiceMetrics(ctx context.Context, serviceName string) (*metrics.Snapshot, error)
	GetAllServiceMetrics(ctx context.Context) (map[string]*metrics.Snapshot, error)
}

// Handlers wraps the dependencies of the HTTP API.
type Handlers struct {
	ingestor        EventIngestor
	events          EventReader
	alerts          AlertLister
	dispatcher      AlertDispatcher
	refresher       ScheduleRefresher
	schedules       ScheduleLister
	search          Searcher
	workspace       WorkspaceIndexer
	metricsReader   MetricsReader
	settingsPath    string
	alertStatusPath string
	now             func() time.Time
}

// Deps bundles the handler dependencies. Dispatcher, workspace indexer, and
// metrics reader are optional; their endpoints answer 503 when absent.
type Deps struct {
	Ingestor        EventIngestor
	Events          EventReader
	Alerts          AlertLister
	Dispatcher      AlertDispatcher
	Refresher       ScheduleRefresher
	Schedules       ScheduleLister
	Search          Searcher
	Workspace       WorkspaceIndexer
	MetricsReader   MetricsReader
	SettingsPath    string
	AlertStatusPath string
}

// NewHandlers creates the handler set.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		ingestor:        deps.Ingestor,
		events:          deps.Events,
		alerts:          deps.Alerts,
		dispatcher:      deps.Dispatcher,
		refresher:       deps.Refresher,
		schedules:       deps.Schedules,
		search:          deps.Search,
		workspace:       deps.Workspace,
		metricsReader:   deps.MetricsReader,
		settingsPath:    deps.SettingsPath,
		alertStatusPath: deps.AlertStatusPath,
		now:             time.Now,
	}
}
