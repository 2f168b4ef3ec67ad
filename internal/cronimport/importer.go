// Package cronimport backfills openclaw cron run history into the activity
// stream. Each run becomes a deduplicated cron_run event, so repeated imports
// converge instead of accumulating.
package cronimport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/openclaw"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

const runLimit = 50

// RunSource lists cron jobs and their run history.
type RunSource interface {
	ListCronJobs(ctx context.Context) ([]openclaw.CronJob, error)
	ListCronRuns(ctx context.Context, jobID string, limit int) ([]openclaw.CronRun, error)
}

// EventRecorder ingests activity events.
type EventRecorder interface {
	Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error)
}

// Importer turns cron run history into activity events.
type Importer struct {
	source RunSource
	events EventRecorder
	now    func() time.Time
}

// NewImporter creates an importer.
func NewImporter(source RunSource, events EventRecorder) *Importer {
	return &Importer{source: source, events: events, now: time.Now}
}

// Import fetches run history for every job and ingests one cron_run event per
// run, then records a summary indexer event. A failing per-job history lookup
// is logged and skipped; the rest of the import proceeds. Returns the number
// of run events submitted.
func (im *Importer) Import(ctx context.Context) (int, error) {
	jobs, err := im.source.ListCronJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cron jobs: %w", err)
	}

	total := 0
	for _, job := range jobs {
		if job.ID == "" {
			continue
		}
		runs, err := im.source.ListCronRuns(ctx, job.ID, runLimit)
		if err != nil {
			slog.Warn("Failed to list cron runs", "job_id", job.ID, "error", err)
			continue
		}
		for _, run := range runs {
			if err := im.ingestRun(ctx, job, run); err != nil {
				slog.Warn("Failed to ingest cron run", "job_id", job.ID, "error", err)
				continue
			}
			total++
		}
	}

	im.recordSummary(ctx, total)
	slog.Info("Imported cron run history", "total", total)
	return total, nil
}

func (im *Importer) ingestRun(ctx context.Context, job openclaw.CronJob, run openclaw.CronRun) error {
	status := run.Status
	if status == "" {
		status = "unknown"
	}

	name := job.Name
	if name == "" {
		name = job.ID
	}
	summary := "Cron run finished: " + name
	if status == "error" {
		summary = "Cron run failed: " + name
	}

	ts := im.now().UnixMilli()
	if n, ok := openclaw.RawNumber(run.RunAtMs); ok {
		ts = int64(n)
	} else if n, ok := openclaw.RawNumber(run.Ts); ok {
		ts = int64(n)
	}

	_, err := im.events.Ingest(ctx, &storage.ActivityEvent{
		Ts:      ts,
		Source:  "openclaw",
		Kind:    "cron_run",
		Status:  status,
		Summary: summary,
		Details: map[string]any{
			"job": map[string]any{
				"id":       job.ID,
				"name":     job.Name,
				"schedule": job.Schedule,
			},
			"run": run.Raw,
		},
		ExternalID: fmt.Sprintf("openclaw-cron-run:%s:%s", run.JobID, runStamp(run)),
	})
	return err
}

// runStamp renders the run's timestamp for the external id, preferring
// runAtMs over ts, matching however the feed expressed it.
func runStamp(run openclaw.CronRun) string {
	for _, raw := range []json.RawMessage{run.RunAtMs, run.Ts} {
		if n, ok := openclaw.RawNumber(raw); ok {
			return fmt.Sprintf("%d", int64(n))
		}
		if s, ok := openclaw.RawString(raw); ok && s != "" {
			return s
		}
	}
	return "unknown"
}

func (im *Importer) recordSummary(ctx context.Context, total int) {
	now := im.now()
	_, err := im.events.Ingest(ctx, &storage.ActivityEvent{
		Ts:         now.UnixMilli(),
		Source:     "mission-control",
		Kind:       "indexer",
		Status:     "ok",
		Summary:    "Imported OpenClaw cron run history",
		Details:    map[string]any{"total": total},
		ExternalID: "openclaw-cron-import:" + now.UTC().Format("2006-01-02"),
	})
	if err != nil {
		slog.Warn("Failed to record cron import summary", "error", err)
	}
}
