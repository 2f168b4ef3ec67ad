package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

const pendingBatchSize = 10

// PendingQueue is the alert-queue surface the dispatcher consumes.
type PendingQueue interface {
	ListPending(ctx context.Context, limit int) ([]*storage.Alert, error)
	MarkResult(ctx context.Context, id string, sentAt int64, sendStatus, sendError string) error
}

// EventRecorder ingests activity events.
type EventRecorder interface {
	Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error)
}

// statusFile is the on-disk dispatch status shape.
type statusFile struct {
	LastDispatchAt int64 `json:"lastDispatchAt"`
}

// Metrics counts delivery outcomes. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RecordAlertSent()
	RecordAlertSendError()
}

type noopMetrics struct{}

func (noopMetrics) RecordAlertSent()      {}
func (noopMetrics) RecordAlertSendError() {}

// Dispatcher drains the pending alert queue through one configured channel.
type Dispatcher struct {
	queue      PendingQueue
	registry   *Registry
	events     EventRecorder
	channel    string
	target     string
	statusPath string
	metrics    Metrics
	now        func() time.Time
}

// NewDispatcher creates a dispatcher sending on channel to target. statusPath
// may be empty to skip the status file.
func NewDispatcher(queue PendingQueue, registry *Registry, events EventRecorder, channel, target, statusPath string) *Dispatcher {
	return &Dispatcher{
		queue:      queue,
		registry:   registry,
		events:     events,
		channel:    channel,
		target:     target,
		statusPath: statusPath,
		metrics:    noopMetrics{},
		now:        time.Now,
	}
}

// SetMetrics installs a counter sink. A nil value keeps the no-op default.
func (d *Dispatcher) SetMetrics(m Metrics) {
	if m != nil {
		d.metrics = m
	}
}

// Dispatch sends one batch of pending alerts and records a terminal outcome
// per alert. A delivery failure is recorded on the alert and does not abort
// the batch. Returns the number of alerts sent.
func (d *Dispatcher) Dispatch(ctx context.Context) (int, error) {
	sender, ok := d.registry.Get(d.channel)
	if !ok {
		return 0, fmt.Errorf("no sender registered for channel %q", d.channel)
	}

	pending, err := d.queue.ListPending(ctx, pendingBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending alerts: %w", err)
	}

	sent := 0
	for _, alert := range pending {
		sentAt := d.now().UnixMilli()
		if err := sender.Send(ctx, d.target, alert); err != nil {
			slog.Error("Failed to send alert", "alert_id", alert.ID, "channel", d.channel, "error", err)
			d.metrics.RecordAlertSendError()
			if markErr := d.queue.MarkResult(ctx, alert.ID, sentAt, "error", err.Error()); markErr != nil {
				slog.Error("Failed to record alert send error", "alert_id", alert.ID, "error", markErr)
			}
			continue
		}
		d.metrics.RecordAlertSent()
		if err := d.queue.MarkResult(ctx, alert.ID, sentAt, "sent", ""); err != nil {
			slog.Error("Failed to mark alert sent", "alert_id", alert.ID, "error", err)
			continue
		}
		sent++
	}

	if sent > 0 {
		d.recordDispatchEvent(ctx, sent)
	}
	d.writeStatus()

	slog.Info("Alert dispatch pass complete", "pending", len(pending), "sent", sent)
	return sent, nil
}

func (d *Dispatcher) recordDispatchEvent(ctx context.Context, sent int) {
	now := d.now().UnixMilli()
	_, err := d.events.Ingest(ctx, &storage.ActivityEvent{
		Ts:         now,
		Source:     "mission-control",
		Kind:       "alerts",
		Status:     "ok",
		Summary:    fmt.Sprintf("Alerts dispatched (%d)", sent),
		Details:    map[string]any{"sent": sent},
		ExternalID: fmt.Sprintf("alerts-dispatch:%d", now),
	})
	if err != nil {
		slog.Warn("Failed to record dispatch event", "error", err)
	}
}

func (d *Dispatcher) writeStatus() {
	if d.statusPath == "" {
		return
	}
	raw, err := json.Marshal(statusFile{LastDispatchAt: d.now().UnixMilli()})
	if err == nil {
		err = os.WriteFile(d.statusPath, append(raw, '\n'), 0o644)
	}
	if err != nil {
		slog.Warn("Failed to write dispatch status file", "path", d.statusPath, "error", err)
	}
}
