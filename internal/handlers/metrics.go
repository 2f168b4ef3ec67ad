package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mahope/openclaw-mission-control/internal/metrics"
)

// knownServices are the services the UI expects to see even when offline.
var knownServices = []string{"mission-control", "mc-autopilot"}

// serviceMetricsResponse wraps snapshots with the known service list.
type serviceMetricsResponse struct {
	Services      map[string]*metrics.Snapshot `json:"services"`
	KnownServices []string                     `json:"known_services"`
}

// GetServiceMetrics returns published service metrics snapshots.
// GET /api/v1/services/metrics[?service=]
func (h *Handlers) GetServiceMetrics(w http.ResponseWriter, r *http.Request) {
	if h.metricsReader == nil {
		http.Error(w, "Metrics are not configured", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()

	if serviceName := r.URL.Query().Get("service"); serviceName != "" {
		snapshot, err := h.metricsReader.GetServiceMetrics(ctx, serviceName)
		if err != nil {
			slog.Warn("Failed to get service metrics", "service", serviceName, "error", err)
			snapshot = &metrics.Snapshot{ServiceName: serviceName, Status: "offline"}
		}
		writeJSON(w, http.StatusOK, snapshot)
		return
	}

	all, err := h.metricsReader.GetAllServiceMetrics(ctx)
	if err != nil {
		slog.Error("Failed to get service metrics", "error", err)
		http.Error(w, "Failed to retrieve service metrics", http.StatusInternalServerError)
		return
	}
	for _, name := range knownServices {
		if _, ok := all[name]; !ok {
			all[name] = &metrics.Snapshot{ServiceName: name, Status: "offline"}
		}
	}
	writeJSON(w, http.StatusOK, serviceMetricsResponse{Services: all, KnownServices: knownServices})
}
