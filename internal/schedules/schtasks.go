package schedules

import (
	"context"
	"log/slog"
	"strings"
)

// TaskTableSource produces the raw LIST-format dump of platform scheduled
// tasks (the output of `schtasks /Query /FO LIST /V`).
type TaskTableSource interface {
	ListPlatformTasks(ctx context.Context) (string, error)
}

// TaskTableAdapter normalizes the platform task table into schedule
// candidates.
type TaskTableAdapter struct {
	source TaskTableSource
}

// NewTaskTableAdapter creates the adapter.
func NewTaskTableAdapter(source TaskTableSource) *TaskTableAdapter {
	return &TaskTableAdapter{source: source}
}

// System returns the origin system id this adapter covers.
func (a *TaskTableAdapter) System() string {
	return "windows"
}

// Collect returns normalized candidates. Query failures yield an empty list;
// records missing a name or a resolvable next-run time are dropped.
func (a *TaskTableAdapter) Collect(ctx context.Context) []Candidate {
	stdout, err := a.source.ListPlatformTasks(ctx)
	if err != nil {
		slog.Warn("Platform task table unavailable", "error", err)
		return nil
	}

	var items []Candidate
	for _, record := range parseTaskTable(stdout) {
		name := record["TaskName"]
		if name == "" {
			name = record["Task Name"]
		}
		if name == "" {
			continue
		}

		nextRunAt, ok := parseDate(record["Next Run Time"])
		if !ok {
			continue
		}

		scheduleText := record["Schedule"]
		if scheduleText == "" {
			scheduleText = record["Schedule Type"]
		}
		if scheduleText == "" {
			parts := []string{}
			for _, key := range []string{"Schedule Type", "Start Time", "Start Date"} {
				if v := record[key]; v != "" {
					parts = append(parts, v)
				}
			}
			scheduleText = strings.Join(parts, " ")
		}
		if scheduleText == "" {
			scheduleText = "Scheduled Task"
		}

		status := record["Status"]
		if status == "" {
			status = record["Scheduled Task State"]
		}
		enabled := !strings.Contains(strings.ToLower(status), "disabled")

		command := ""
		for _, key := range []string{"Task To Run", "Action", "Actions"} {
			if v := record[key]; v != "" {
				command = v
				break
			}
		}
		if command == "" {
			command = "schtasks"
		}

		items = append(items, Candidate{
			System:       "windows",
			Name:         name,
			ScheduleText: scheduleText,
			NextRunAt:    nextRunAt,
			Enabled:      enabled,
			Command:      command,
			ExternalID:   name, // the task name is the natural key on this platform
		})
	}
	return items
}

// parseTaskTable parses newline-delimited "Key: Value" pairs grouped into
// records by blank lines. Values may contain colons; the split happens at the
// first one only. A repeated key within a record keeps the last value.
func parseTaskTable(stdout string) []map[string]string {
	lines := strings.Split(stdout, "\n")
	var entries []map[string]string
	current := map[string]string{}

	flush := func() {
		if len(current) > 0 {
			entries = append(entries, current)
		}
		current = map[string]string{}
	}

	for _, rawLine := range lines {
		line := strings.TrimRight(rawLine, " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key == "" {
			continue
		}
		current[key] = value
	}
	flush()
	return entries
}
