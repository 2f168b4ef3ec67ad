package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mahope/openclaw-mission-control/internal/activity"
	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// ingestResponse is the wire shape for a stored event, surfacing side-effect
// failures without failing the ingest.
type ingestResponse struct {
	ID           string `json:"id"`
	Deduplicated bool   `json:"deduplicated,omitempty"`
	AlertID      string `json:"alertId,omitempty"`
	AlertError   string `json:"alertError,omitempty"`
	IndexError   string `json:"indexError,omitempty"`
}

// CreateActivity ingests one activity event.
// POST /api/v1/activity
func (h *Handlers) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var ev storage.ActivityEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	activity.Normalize(&ev, h.now())

	outcome, err := h.ingestor.Ingest(r.Context(), &ev)
	if err != nil {
		slog.Error("Failed to ingest activity event", "error", err)
		http.Error(w, "Failed to ingest activity event", http.StatusInternalServerError)
		return
	}

	resp := ingestResponse{
		ID:           outcome.EventID,
		Deduplicated: outcome.Deduplicated,
		AlertID:      outcome.AlertID,
	}
	if outcome.AlertErr != nil {
		resp.AlertError = outcome.AlertErr.Error()
	}
	if outcome.IndexErr != nil {
		resp.IndexError = outcome.IndexErr.Error()
	}

	status := http.StatusCreated
	if outcome.Deduplicated {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// ListActivity lists recent activity events with optional filters.
// GET /api/v1/activity?kind=&status=&source=&limit=
func (h *Handlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.ActivityFilter{
		Kind:   q.Get("kind"),
		Status: q.Get("status"),
		Source: q.Get("source"),
		Limit:  parseLimit(r, 0),
	}

	events, err := h.events.ListEvents(r.Context(), filter)
	if err != nil {
		slog.Error("Failed to list activity events", "error", err)
		http.Error(w, "Failed to list activity events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []*storage.ActivityEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetActivityFacets returns the distinct kind/status/source values of recent
// events for filter dropdowns.
// GET /api/v1/activity/facets
func (h *Handlers) GetActivityFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.events.ListEventFacets(r.Context())
	if err != nil {
		slog.Error("Failed to list activity facets", "error", err)
		http.Error(w, "Failed to list activity facets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}
