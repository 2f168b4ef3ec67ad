package activity

import (
	"time"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// Defaults applied to activity events submitted with missing optional fields.
// Shared by the HTTP endpoint, the Kafka consumer, and the CLI emitter.
const (
	DefaultSource  = "openclaw"
	DefaultKind    = "tool"
	DefaultStatus  = "ok"
	DefaultSummary = "Activity event"
)

// Normalize fills in defaults for a partially specified event in place.
func Normalize(ev *storage.ActivityEvent, now time.Time) {
	if ev.Ts == 0 {
		ev.Ts = now.UnixMilli()
	}
	if ev.Source == "" {
		ev.Source = DefaultSource
	}
	if ev.Kind == "" {
		ev.Kind = DefaultKind
	}
	if ev.Status == "" {
		ev.Status = DefaultStatus
	}
	if ev.Summary == "" {
		ev.Summary = DefaultSummary
	}
	if ev.Details == nil {
		ev.Details = map[string]any{}
	}
	if ev.RelatedPaths == nil {
		ev.RelatedPaths = []string{}
	}
	if ev.RelatedUrls == nil {
		ev.RelatedUrls = []string{}
	}
}
