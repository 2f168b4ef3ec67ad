package cronimport

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/openclaw"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

type fakeRunSource struct {
	jobs    []openclaw.CronJob
	runs    map[string][]openclaw.CronRun
	jobsErr error
	runsErr map[string]error
}

func (f *fakeRunSource) ListCronJobs(ctx context.Context) ([]openclaw.CronJob, error) {
	return f.jobs, f.jobsErr
}

func (f *fakeRunSource) ListCronRuns(ctx context.Context, jobID string, limit int) ([]openclaw.CronRun, error) {
	if err := f.runsErr[jobID]; err != nil {
		return nil, err
	}
	return f.runs[jobID], nil
}

type fakeRecorder struct {
	events []*storage.ActivityEvent
}

func (f *fakeRecorder) Ingest(ctx context.Context, ev *storage.ActivityEvent) (activity.Outcome, error) {
	f.events = append(f.events, ev)
	return activity.Outcome{EventID: "ev-1"}, nil
}

func newTestImporter(source RunSource, recorder EventRecorder) *Importer {
	im := NewImporter(source, recorder)
	im.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return im
}

func TestImportIngestsRunsAndSummary(t *testing.T) {
	source := &fakeRunSource{
		jobs: []openclaw.CronJob{{ID: "job-1", Name: "Nightly export"}},
		runs: map[string][]openclaw.CronRun{
			"job-1": {
				{JobID: "job-1", Status: "ok", RunAtMs: json.RawMessage(`1717200000000`), Raw: map[string]any{"jobId": "job-1", "status": "ok"}},
				{JobID: "job-1", Status: "error", Ts: json.RawMessage(`1717100000000`), Raw: map[string]any{"jobId": "job-1", "status": "error"}},
			},
		},
	}
	recorder := &fakeRecorder{}

	total, err := newTestImporter(source, recorder).Import(context.Background())
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if len(recorder.events) != 3 {
		t.Fatalf("events = %d, want 2 runs + summary", len(recorder.events))
	}

	ok := recorder.events[0]
	if ok.Kind != "cron_run" || ok.Source != "openclaw" || ok.Status != "ok" {
		t.Errorf("run event = %+v", ok)
	}
	if ok.Summary != "Cron run finished: Nightly export" {
		t.Errorf("summary = %q", ok.Summary)
	}
	if ok.Ts != 1717200000000 {
		t.Errorf("ts = %d, want runAtMs", ok.Ts)
	}
	if ok.ExternalID != "openclaw-cron-run:job-1:1717200000000" {
		t.Errorf("externalId = %q", ok.ExternalID)
	}

	failed := recorder.events[1]
	if failed.Summary != "Cron run failed: Nightly export" {
		t.Errorf("summary = %q", failed.Summary)
	}
	if failed.Ts != 1717100000000 {
		t.Errorf("ts = %d, want ts fallback", failed.Ts)
	}
	if failed.ExternalID != "openclaw-cron-run:job-1:1717100000000" {
		t.Errorf("externalId = %q", failed.ExternalID)
	}

	summary := recorder.events[2]
	if summary.Kind != "indexer" || summary.Summary != "Imported OpenClaw cron run history" {
		t.Errorf("summary event = %+v", summary)
	}
	if summary.ExternalID != "openclaw-cron-import:2024-06-01" {
		t.Errorf("summary externalId = %q", summary.ExternalID)
	}
	if total, ok := summary.Details.(map[string]any)["total"].(int); !ok || total != 2 {
		t.Errorf("summary details = %v", summary.Details)
	}
}

func TestImportSkipsJobsWithoutID(t *testing.T) {
	source := &fakeRunSource{jobs: []openclaw.CronJob{{Name: "anonymous"}}}
	recorder := &fakeRecorder{}

	total, err := newTestImporter(source, recorder).Import(context.Background())
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
	if len(recorder.events) != 1 {
		t.Errorf("events = %d, want summary only", len(recorder.events))
	}
}

func TestImportContinuesPastFailingJob(t *testing.T) {
	source := &fakeRunSource{
		jobs: []openclaw.CronJob{{ID: "broken"}, {ID: "healthy"}},
		runs: map[string][]openclaw.CronRun{
			"healthy": {{JobID: "healthy", Status: "ok", RunAtMs: json.RawMessage(`1`)}},
		},
		runsErr: map[string]error{"broken": errors.New("cli failed")},
	}
	recorder := &fakeRecorder{}

	total, err := newTestImporter(source, recorder).Import(context.Background())
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestImportJobsListFailureIsFatal(t *testing.T) {
	source := &fakeRunSource{jobsErr: errors.New("feed down")}
	if _, err := newTestImporter(source, &fakeRecorder{}).Import(context.Background()); err == nil {
		t.Error("expected error when job listing fails")
	}
}
