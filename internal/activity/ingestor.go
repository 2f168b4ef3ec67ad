// Package activity provides activity event ingestion: dedup, classification,
// alert forwarding, and search index projection.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mahope/openclaw-mission-control/internal/rules"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// EventStore persists activity events with indexed external-id lookup.
type EventStore interface {
	// GetEventByExternalID returns (nil, nil) when no event carries the key.
	GetEventByExternalID(ctx context.Context, externalID string) (*storage.ActivityEvent, error)

	// InsertEvent persists a new event and returns its generated id.
	InsertEvent(ctx context.Context, ev *storage.ActivityEvent) (string, error)
}

// AlertEnqueuer queues alert drafts; it performs its own dedup by external id.
type AlertEnqueuer interface {
	Enqueue(ctx context.Context, alert *storage.Alert) (string, error)
}

// SearchWriter writes search index projections.
type SearchWriter interface {
	InsertSearchItem(ctx context.Context, item *storage.SearchItem) error
}

// Outcome reports the result of one ingest call. Alert queuing and search
// indexing are best-effort side effects; their failures are reported here
// rather than failing the ingest.
type Outcome struct {
	EventID      string `json:"id"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
	AlertID      string `json:"alertId,omitempty"`
	AlertErr     error  `json:"-"`
	IndexErr     error  `json:"-"`
}

// Metrics counts ingest outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RecordEventIngested()
	RecordEventDeduped()
	RecordAlertQueued()
	RecordSearchWrite()
}

type noopMetrics struct{}

func (noopMetrics) RecordEventIngested() {}
func (noopMetrics) RecordEventDeduped()  {}
func (noopMetrics) RecordAlertQueued()   {}
func (noopMetrics) RecordSearchWrite()   {}

// Ingestor classifies and persists activity events.
type Ingestor struct {
	store   EventStore
	alerts  AlertEnqueuer
	search  SearchWriter
	metrics Metrics
}

// NewIngestor creates an event ingestor.
func NewIngestor(store EventStore, alerts AlertEnqueuer, search SearchWriter) *Ingestor {
	return &Ingestor{
		store:   store,
		alerts:  alerts,
		search:  search,
		metrics: noopMetrics{},
	}
}

// SetMetrics installs a counter sink. A nil value keeps the no-op default.
func (i *Ingestor) SetMetrics(m Metrics) {
	if m != nil {
		i.metrics = m
	}
}

// Ingest stores one activity event. If the event carries an external id that
// is already stored, the existing identity is returned and nothing else
// happens. Otherwise the event is classified, persisted with derived
// severity/tags, any alert draft is forwarded to the queue, and one search
// item is emitted.
func (i *Ingestor) Ingest(ctx context.Context, ev *storage.ActivityEvent) (Outcome, error) {
	if ev.ExternalID != "" {
		existing, err := i.store.GetEventByExternalID(ctx, ev.ExternalID)
		if err != nil {
			return Outcome{}, err
		}
		if existing != nil {
			i.metrics.RecordEventDeduped()
			return Outcome{EventID: existing.ID, Deduplicated: true}, nil
		}
	}

	result := rules.Classify(rules.Input{
		Ts:           ev.Ts,
		Source:       ev.Source,
		Kind:         ev.Kind,
		Status:       ev.Status,
		Summary:      ev.Summary,
		Details:      ev.Details,
		RelatedPaths: ev.RelatedPaths,
	})
	ev.Severity = result.Severity
	ev.Tags = result.Tags

	id, err := i.store.InsertEvent(ctx, ev)
	if err != nil {
		return Outcome{}, err
	}
	i.metrics.RecordEventIngested()

	outcome := Outcome{EventID: id}

	if result.Alert != nil {
		alertID, err := i.alerts.Enqueue(ctx, &storage.Alert{
			Severity:        result.Alert.Severity,
			Status:          "queued",
			Title:           result.Alert.Title,
			Body:            result.Alert.Body,
			ActivityEventID: id,
			ExternalID:      result.Alert.ExternalID,
		})
		if err != nil {
			slog.Error("Failed to enqueue alert for event", "event_id", id, "error", err)
			outcome.AlertErr = err
		} else {
			outcome.AlertID = alertID
			i.metrics.RecordAlertQueued()
		}
	}

	if err := i.search.InsertSearchItem(ctx, searchItemFor(ev, id)); err != nil {
		slog.Warn("Failed to index activity event for search", "event_id", id, "error", err)
		outcome.IndexErr = err
	} else {
		i.metrics.RecordSearchWrite()
	}

	return outcome, nil
}

// searchItemFor builds the search projection of an event. Content flattens
// the summary, kind, status, source, related paths/urls, and a string form of
// the details, dropping empty segments.
func searchItemFor(ev *storage.ActivityEvent, id string) *storage.SearchItem {
	segments := []string{ev.Summary, ev.Kind, ev.Status, ev.Source}
	segments = append(segments, ev.RelatedPaths...)
	segments = append(segments, ev.RelatedUrls...)
	segments = append(segments, detailsString(ev.Details))

	var nonEmpty []string
	for _, s := range segments {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}

	return &storage.SearchItem{
		Kind:    "activity_event",
		Title:   ev.Kind + ": " + ev.Summary,
		Content: strings.Join(nonEmpty, " "),
		Source:  ev.Source,
		RefID:   id,
		Ts:      ev.Ts,
	}
}

func detailsString(details any) string {
	if s, ok := details.(string); ok {
		return s
	}
	data, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(data)
}
