package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mahope/openclaw-mission-control/internal/settings"
)

// GetSettings returns the current settings, defaults included.
// GET /api/v1/settings
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := settings.Load(h.settingsPath)
	if err != nil {
		slog.Error("Failed to load settings", "path", h.settingsPath, "error", err)
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings overwrites the settings file.
// POST /api/v1/settings
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s settings.Settings
	if !decodeJSON(w, r, &s) {
		return
	}
	if s.WorkspaceIgnore == nil {
		s.WorkspaceIgnore = append([]string(nil), settings.DefaultWorkspaceIgnore...)
	}
	if s.LiveCronImportEverySeconds == 0 {
		s.LiveCronImportEverySeconds = settings.DefaultLiveCronImportEverySeconds
	}

	if err := settings.Save(h.settingsPath, &s); err != nil {
		slog.Error("Failed to save settings", "path", h.settingsPath, "error", err)
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, &s)
}
