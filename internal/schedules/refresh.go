package schedules

import (
	"context"
	"log/slog"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// EventRecorder ingests activity events. The refresher uses it to leave an
// audit trail of each collection pass.
type EventRecorder interface {
	Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error)
}

// Metrics counts upserted schedule rows. Implementations must be safe for
// concurrent use.
type Metrics interface {
	AddSchedulesUpserted(n int)
}

type noopMetrics struct{}

func (noopMetrics) AddSchedulesUpserted(int) {}

// Refresher runs one full collect-and-upsert pass and records the outcome as
// an indexer activity event.
type Refresher struct {
	collector *Collector
	upserter  *Upserter
	events    EventRecorder
	metrics   Metrics
	now       func() time.Time
}

// NewRefresher creates a refresher.
func NewRefresher(collector *Collector, upserter *Upserter, events EventRecorder) *Refresher {
	return &Refresher{
		collector: collector,
		upserter:  upserter,
		events:    events,
		metrics:   noopMetrics{},
		now:       time.Now,
	}
}

// SetMetrics installs a counter sink. A nil value keeps the no-op default.
func (r *Refresher) SetMetrics(m Metrics) {
	if m != nil {
		r.metrics = m
	}
}

// Refresh collects candidates from every source, upserts them, and returns
// the number of items processed.
func (r *Refresher) Refresh(ctx context.Context) int {
	candidates := r.collector.Collect(ctx)
	processed := r.upserter.Upsert(ctx, candidates)
	r.metrics.AddSchedulesUpserted(processed)

	_, err := r.events.Ingest(ctx, &storage.ActivityEvent{
		Ts:      r.now().UnixMilli(),
		Source:  "mission-control",
		Kind:    "indexer",
		Status:  "ok",
		Summary: "Schedules refreshed",
		Details: map[string]any{"count": processed},
	})
	if err != nil {
		slog.Warn("Failed to record schedule refresh event", "error", err)
	}

	slog.Info("Schedules refreshed", "collected", len(candidates), "processed", processed)
	return processed
}
