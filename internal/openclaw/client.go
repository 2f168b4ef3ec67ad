// Package openclaw provides a narrow client for the local openclaw CLI: cron
// job listing, run history, and message sending. Everything the rest of the
// core needs from openclaw goes through the interfaces its consumers define,
// so tests can inject fakes instead of shelling out.
package openclaw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// CronSchedule is the structured schedule shape on newer job feeds.
type CronSchedule struct {
	Expr string `json:"expr"`
	Tz   string `json:"tz"`
}

// CronJob is one entry from `openclaw cron list`. The feed has grown several
// shapes over time, so alternates are kept as raw JSON and resolved by the
// schedule adapter in a fixed priority order.
type CronJob struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Schedule    json.RawMessage `json:"schedule"` // {expr,tz} object or a bare cron string
	Cron        string          `json:"cron"`
	Enabled     *bool           `json:"enabled"`
	NextRunAtMs json.RawMessage `json:"nextRunAtMs"`
	NextRunAt   json.RawMessage `json:"nextRunAt"`
	State       CronJobState    `json:"state"`
	Payload     CronPayload     `json:"payload"`
}

// CronJobState carries runtime scheduling state for a job.
type CronJobState struct {
	NextRunAtMs json.RawMessage `json:"nextRunAtMs"`
}

// CronPayload is the tagged action payload of a job.
type CronPayload struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// CronRun is one run history entry from `openclaw cron runs`. Raw keeps the
// full entry so importers can record it verbatim.
type CronRun struct {
	JobID   string          `json:"jobId"`
	Status  string          `json:"status"`
	RunAtMs json.RawMessage `json:"runAtMs"`
	Ts      json.RawMessage `json:"ts"`
	Raw     map[string]any  `json:"-"`
}

// UnmarshalJSON parses the typed fields and keeps the full entry in Raw.
func (r *CronRun) UnmarshalJSON(data []byte) error {
	type plain CronRun
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = CronRun(p)
	_ = json.Unmarshal(data, &r.Raw)
	return nil
}

// Client shells out to the openclaw CLI with a bounded timeout per call.
type Client struct {
	bin     string
	timeout time.Duration
}

// NewClient creates a CLI client. bin defaults to "openclaw".
func NewClient(bin string) *Client {
	if bin == "" {
		bin = "openclaw"
	}
	return &Client{bin: bin, timeout: 30 * time.Second}
}

// ListCronJobs runs `openclaw cron list --json --all` and parses the result.
func (c *Client) ListCronJobs(ctx context.Context) ([]CronJob, error) {
	stdout, err := c.run(ctx, "cron", "list", "--json", "--all")
	if err != nil {
		return nil, err
	}
	return parseCronJobs(stdout)
}

// ListCronRuns runs `openclaw cron runs --id <id> --limit <n>`.
func (c *Client) ListCronRuns(ctx context.Context, jobID string, limit int) ([]CronRun, error) {
	stdout, err := c.run(ctx, "cron", "runs", "--id", jobID, "--limit", strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	jsonText := fromFirstBrace(stdout)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON payload in cron runs output")
	}
	var parsed struct {
		Entries []CronRun `json:"entries"`
	}
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse cron runs output: %w", err)
	}
	return parsed.Entries, nil
}

// SendMessage runs `openclaw message send` to deliver a message through the
// configured channel.
func (c *Client) SendMessage(ctx context.Context, channel, target, message string) error {
	_, err := c.run(ctx, "message", "send",
		"--channel", channel,
		"--target", target,
		"--message", message,
	)
	return err
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("openclaw %s failed: %w (%s)", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// parseCronJobs tolerates both the object form {"jobs": [...]} and a bare
// array, and skips any banner text the CLI prints before the JSON payload.
func parseCronJobs(stdout string) ([]CronJob, error) {
	if jsonText := fromFirstBrace(stdout); jsonText != "" {
		var parsed struct {
			Jobs []CronJob `json:"jobs"`
		}
		if err := json.Unmarshal([]byte(jsonText), &parsed); err == nil {
			return parsed.Jobs, nil
		}
	}
	if idx := strings.Index(stdout, "["); idx >= 0 {
		var jobs []CronJob
		if err := json.Unmarshal([]byte(stdout[idx:]), &jobs); err == nil {
			return jobs, nil
		}
	}
	return nil, fmt.Errorf("no parseable JSON payload in cron list output")
}

func fromFirstBrace(s string) string {
	if idx := strings.Index(s, "{"); idx >= 0 {
		return s[idx:]
	}
	return ""
}

// RawNumber extracts a numeric value from a loose JSON field.
func RawNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// RawString extracts a string value from a loose JSON field.
func RawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
