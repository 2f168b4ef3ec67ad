// Package rules implements the activity event classifier. Classification is a
// pure function: given the same input it always produces the same severity,
// tag set, and alert decision, and it performs no I/O.
package rules

import (
	"fmt"
	"strconv"
)

// Severity levels, from least to most urgent.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Input carries the event facts the classifier inspects.
type Input struct {
	Ts           int64
	Source       string
	Kind         string
	Status       string
	Summary      string
	Details      any
	RelatedPaths []string
}

// AlertDraft is a notification the classifier decided to raise.
type AlertDraft struct {
	Severity   string // "medium" or "high"
	Title      string
	Body       string
	ExternalID string
}

// Result is the classification outcome.
type Result struct {
	Severity string
	Tags     []string
	Alert    *AlertDraft
}

// Classify derives severity, tags, and an optional alert draft from event
// facts. Rules run in a fixed order; later rules overwrite earlier severity
// decisions, so the order is part of the contract.
func Classify(in Input) Result {
	tags := newTagSet()
	tags.add("source:" + in.Source)
	tags.add("kind:" + in.Kind)
	tags.add("status:" + in.Status)

	rc, hasRC := pickRC(in.Details)

	severity := SeverityLow
	if in.Status == "error" {
		severity = SeverityHigh
	}

	if in.Kind == "garmin_export" {
		tags.add("domain:health")
		tags.add("system:garmin")
		if hasRC {
			tags.add("rc:" + formatRC(rc))
		}
		if hasRC && rc != 0 {
			severity = SeverityHigh
		}
	}

	if in.Kind == "cron_run" {
		tags.add("system:openclaw")
	}

	if in.Kind == "indexer" {
		tags.add("system:mission-control")
		// Runs after the error baseline already forced "high", so today this
		// branch never downgrades anything. Keep the order: callers that
		// separate indexer status from general status depend on it.
		if in.Status == "error" {
			severity = SeverityMedium
		}
	}

	var alert *AlertDraft
	if severity == SeverityHigh || severity == SeverityMedium {
		actionable := in.Status == "error" || (in.Kind == "garmin_export" && hasRC && rc != 0)
		if actionable {
			title := "⚠️ Mission Control alert"
			if severity == SeverityHigh {
				title = "🚨 Mission Control alert"
			}
			alert = &AlertDraft{
				Severity:   severity,
				Title:      title,
				Body:       fmt.Sprintf("%s\n\nKind: %s\nSource: %s\nStatus: %s", in.Summary, in.Kind, in.Source, in.Status),
				ExternalID: fmt.Sprintf("alert:%s:%s:%d", in.Kind, in.Source, in.Ts),
			}
		}
	}

	return Result{Severity: severity, Tags: tags.slice(), Alert: alert}
}

// pickRC extracts a numeric return code from an opaque details payload. The
// shapes producers actually emit are tried in a fixed priority order: a
// top-level "rc", a top-level "RC", then "rc" nested one level under a
// "details" field. First match wins.
func pickRC(details any) (float64, bool) {
	d, ok := details.(map[string]any)
	if !ok {
		return 0, false
	}
	if rc, ok := asNumber(d["rc"]); ok {
		return rc, true
	}
	if rc, ok := asNumber(d["RC"]); ok {
		return rc, true
	}
	if inner, ok := d["details"].(map[string]any); ok {
		if rc, ok := asNumber(inner["rc"]); ok {
			return rc, true
		}
	}
	return 0, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// formatRC renders a return code the way it appears in tags: integers without
// a decimal point.
func formatRC(rc float64) string {
	return strconv.FormatFloat(rc, 'f', -1, 64)
}

// tagSet accumulates tags with set semantics while preserving first-insertion
// order, so the rendered sequence is stable across runs.
type tagSet struct {
	seen map[string]bool
	tags []string
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]bool)}
}

func (s *tagSet) add(tag string) {
	if s.seen[tag] {
		return
	}
	s.seen[tag] = true
	s.tags = append(s.tags, tag)
}

func (s *tagSet) slice() []string {
	return s.tags
}
