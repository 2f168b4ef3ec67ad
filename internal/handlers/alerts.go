package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// ListAlerts lists recent alerts.
// GET /api/v1/alerts?limit=
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.List(r.Context(), parseLimit(r, 0))
	if err != nil {
		slog.Error("Failed to list alerts", "error", err)
		http.Error(w, "Failed to list alerts", http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []*storage.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

// alertStatusResponse reports queue depth plus the last dispatch pass.
type alertStatusResponse struct {
	Pending        int   `json:"pending"`
	LastDispatchAt int64 `json:"lastDispatchAt,omitempty"`
}

// GetAlertStatus reports the pending queue depth and the timestamp of the
// last dispatch pass. The status file written by the dispatcher is the primary
// source; without one, the latest recorded dispatch event stands in.
// GET /api/v1/alerts/status
func (h *Handlers) GetAlertStatus(w http.ResponseWriter, r *http.Request) {
	pending, err := h.alerts.ListPending(r.Context(), 50)
	if err != nil {
		slog.Error("Failed to list pending alerts", "error", err)
		http.Error(w, "Failed to read alert status", http.StatusInternalServerError)
		return
	}

	resp := alertStatusResponse{Pending: len(pending)}
	if h.alertStatusPath != "" {
		if raw, err := os.ReadFile(h.alertStatusPath); err == nil {
			var status struct {
				LastDispatchAt int64 `json:"lastDispatchAt"`
			}
			if json.Unmarshal(raw, &status) == nil {
				resp.LastDispatchAt = status.LastDispatchAt
			}
		}
	}
	if resp.LastDispatchAt == 0 && h.events != nil {
		if ev, err := h.events.LatestEventByKind(r.Context(), "alerts"); err == nil && ev != nil {
			resp.LastDispatchAt = ev.Ts
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DispatchAlerts runs one dispatch pass over the pending queue.
// POST /api/v1/alerts/dispatch
func (h *Handlers) DispatchAlerts(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		http.Error(w, "Alert dispatch is not configured", http.StatusServiceUnavailable)
		return
	}
	sent, err := h.dispatcher.Dispatch(r.Context())
	if err != nil {
		slog.Error("Failed to dispatch alerts", "error", err)
		http.Error(w, "Failed to dispatch alerts", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
