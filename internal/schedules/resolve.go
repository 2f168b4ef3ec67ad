// Package schedules collects scheduled-job definitions from heterogeneous
// origin systems, normalizes them into ScheduledItem candidates, and upserts
// them with paired search projections.
package schedules

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Candidate is one normalized schedule produced by a source adapter, prior to
// persistence.
type Candidate struct {
	System       string
	Name         string
	ScheduleText string
	NextRunAt    int64 // epoch milliseconds
	Enabled      bool
	Command      string
	ExternalID   string
}

// dateLayouts are the timestamp formats origin systems actually emit, tried
// in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 3:04:05 PM", // schtasks on US locales
	"02-01-2006 15:04:05",
	"2006-01-02",
}

// parseDate parses a loose date string into epoch milliseconds. Blank values
// and the literal "N/A" fail the parse.
func parseDate(value string) (int64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "n/a") {
		return 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// cronParser accepts standard five-field expressions, six-field expressions
// with a leading seconds term, and @-descriptors.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// nextRunFromCron evaluates a cron expression against now and returns the
// soonest future occurrence in epoch milliseconds.
func nextRunFromCron(expr string, now time.Time) (int64, bool) {
	sched, err := cronParser.Parse(strings.TrimSpace(expr))
	if err != nil {
		return 0, false
	}
	next := sched.Next(now)
	if next.IsZero() {
		return 0, false
	}
	return next.UnixMilli(), true
}
