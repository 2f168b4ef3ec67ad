package handlers

import (
	"log/slog"
	"net/http"
)

// IndexWorkspace runs one workspace indexing pass.
// POST /api/v1/workspace/index
func (h *Handlers) IndexWorkspace(w http.ResponseWriter, r *http.Request) {
	if h.workspace == nil {
		http.Error(w, "Workspace indexing is not configured", http.StatusServiceUnavailable)
		return
	}
	indexed, err := h.workspace.Index(r.Context())
	if err != nil {
		slog.Error("Workspace indexing failed", "error", err)
		http.Error(w, "Workspace indexing failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": indexed})
}
