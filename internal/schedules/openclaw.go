package schedules

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/openclaw"
)

// CronJobLister queries the live openclaw cron feed.
type CronJobLister interface {
	ListCronJobs(ctx context.Context) ([]openclaw.CronJob, error)
}

// OpenClawAdapter normalizes openclaw cron jobs into schedule candidates.
// When the live feed is unavailable it falls back to parsing the static
// workspace config file.
type OpenClawAdapter struct {
	client     CronJobLister
	configPath string
	now        func() time.Time
}

// NewOpenClawAdapter creates the adapter. workspaceDir is the openclaw
// workspace holding the fallback openclaw.json config.
func NewOpenClawAdapter(client CronJobLister, workspaceDir string) *OpenClawAdapter {
	return &OpenClawAdapter{
		client:     client,
		configPath: filepath.Join(workspaceDir, "openclaw.json"),
		now:        time.Now,
	}
}

// System returns the origin system id this adapter covers.
func (a *OpenClawAdapter) System() string {
	return "openclaw"
}

// Collect returns normalized candidates. Any feed or parse failure yields an
// empty list; a single unresolvable job is dropped without affecting the rest.
func (a *OpenClawAdapter) Collect(ctx context.Context) []Candidate {
	jobs, err := a.client.ListCronJobs(ctx)
	if err == nil {
		return a.fromJobs(jobs)
	}
	slog.Warn("OpenClaw cron feed unavailable, falling back to config", "error", err)
	return a.fromConfig()
}

func (a *OpenClawAdapter) fromJobs(jobs []openclaw.CronJob) []Candidate {
	now := a.now()
	var items []Candidate
	for _, job := range jobs {
		expr, tz := scheduleExpr(job)
		scheduleText := "unknown"
		if expr != "" {
			scheduleText = expr
			if tz != "" {
				scheduleText = fmt.Sprintf("%s (%s)", expr, tz)
			}
		}

		nextRunAt, ok := resolveNextRun(now, expr, job.State.NextRunAtMs, job.NextRunAtMs, job.NextRunAt)
		if !ok {
			continue
		}

		name := job.Name
		if name == "" {
			name = job.ID
		}
		if name == "" {
			name = "OpenClaw Cron"
		}
		externalID := job.ID
		if externalID == "" {
			externalID = job.Name
		}
		if externalID == "" {
			externalID = scheduleText
		}
		enabled := true
		if job.Enabled != nil {
			enabled = *job.Enabled
		}

		items = append(items, Candidate{
			System:       "openclaw",
			Name:         name,
			ScheduleText: scheduleText,
			NextRunAt:    nextRunAt,
			Enabled:      enabled,
			Command:      commandFor(job.Payload),
			ExternalID:   externalID,
		})
	}
	return items
}

// scheduleExpr resolves the schedule expression by priority: the structured
// schedule object's expr, the legacy cron field, then a bare schedule string.
func scheduleExpr(job openclaw.CronJob) (expr, tz string) {
	var structured openclaw.CronSchedule
	if len(job.Schedule) > 0 && json.Unmarshal(job.Schedule, &structured) == nil && structured.Expr != "" {
		return structured.Expr, structured.Tz
	}
	if job.Cron != "" {
		return job.Cron, ""
	}
	if s, ok := openclaw.RawString(job.Schedule); ok {
		return s, ""
	}
	return "", ""
}

// resolveNextRun tries each raw next-run field in priority order: a numeric
// timestamp wins, then a parseable date string, then evaluating the cron
// expression against now.
func resolveNextRun(now time.Time, expr string, candidates ...json.RawMessage) (int64, bool) {
	var first json.RawMessage
	for _, raw := range candidates {
		if len(raw) > 0 && string(raw) != "null" {
			first = raw
			break
		}
	}
	if n, ok := openclaw.RawNumber(first); ok && n != 0 {
		return int64(n), true
	}
	if s, ok := openclaw.RawString(first); ok {
		if ms, ok := parseDate(s); ok {
			return ms, true
		}
	}
	if expr != "" {
		if ms, ok := nextRunFromCron(expr, now); ok {
			return ms, true
		}
	}
	return 0, false
}

func commandFor(payload openclaw.CronPayload) string {
	switch payload.Kind {
	case "systemEvent":
		return "systemEvent: " + payload.Text
	case "agentTurn":
		return "agentTurn: " + payload.Message
	default:
		return "openclaw cron"
	}
}

// configEntry is one schedule entry in the static workspace config.
type configEntry struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Schedule  string          `json:"schedule"`
	Cron      string          `json:"cron"`
	NextRunAt json.RawMessage `json:"nextRunAt"`
	Enabled   *bool           `json:"enabled"`
	Command   string          `json:"command"`
	Task      string          `json:"task"`
}

// configKeys are the candidate list keys tried in the fallback config, in
// order. Entries from every present key are collected.
var configKeys = []string{"cron", "cronJobs", "crons", "schedules"}

func (a *OpenClawAdapter) fromConfig() []Candidate {
	raw, err := os.ReadFile(a.configPath)
	if err != nil {
		return nil
	}
	var config map[string]json.RawMessage
	if err := json.Unmarshal(raw, &config); err != nil {
		slog.Warn("Failed to parse openclaw config", "path", a.configPath, "error", err)
		return nil
	}

	now := a.now()
	var items []Candidate
	for _, key := range configKeys {
		list, ok := config[key]
		if !ok {
			continue
		}
		var entries []configEntry
		if err := json.Unmarshal(list, &entries); err != nil {
			continue
		}
		for _, entry := range entries {
			scheduleText := entry.Schedule
			if scheduleText == "" {
				scheduleText = entry.Cron
			}
			if scheduleText == "" {
				scheduleText = "unknown"
			}

			nextRunAt, ok := resolveNextRun(now, scheduleText, entry.NextRunAt)
			if !ok {
				continue
			}

			name := entry.Name
			if name == "" {
				name = entry.ID
			}
			if name == "" {
				name = "OpenClaw Cron"
			}
			externalID := entry.ID
			if externalID == "" {
				externalID = entry.Name
			}
			if externalID == "" {
				externalID = scheduleText
			}
			command := entry.Command
			if command == "" {
				command = entry.Task
			}
			if command == "" {
				command = "openclaw cron"
			}
			enabled := true
			if entry.Enabled != nil {
				enabled = *entry.Enabled
			}

			items = append(items, Candidate{
				System:       "openclaw",
				Name:         name,
				ScheduleText: scheduleText,
				NextRunAt:    nextRunAt,
				Enabled:      enabled,
				Command:      command,
				ExternalID:   externalID,
			})
		}
	}
	return items
}
