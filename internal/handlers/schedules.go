package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mahope/openclaw-mission-control/internal/storage"
)

// defaultScheduleWindow is the lookahead listed when no window is given.
const defaultScheduleWindow = 7 * 24 * time.Hour

// RefreshSchedules runs one collect-and-upsert pass over all sources.
// POST /api/v1/schedules/refresh
func (h *Handlers) RefreshSchedules(w http.ResponseWriter, r *http.Request) {
	processed := h.refresher.Refresh(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}

// ListSchedules lists scheduled items with a next run inside the window.
// GET /api/v1/schedules?start=&end= (epoch milliseconds, both inclusive)
func (h *Handlers) ListSchedules(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	start := now.UnixMilli()
	end := now.Add(defaultScheduleWindow).UnixMilli()

	q := r.URL.Query()
	if s := q.Get("start"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "start must be epoch milliseconds", http.StatusBadRequest)
			return
		}
		start = v
	}
	if s := q.Get("end"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "end must be epoch milliseconds", http.StatusBadRequest)
			return
		}
		end = v
	}

	items, err := h.schedules.ListScheduledItems(r.Context(), start, end)
	if err != nil {
		slog.Error("Failed to list scheduled items", "error", err)
		http.Error(w, "Failed to list scheduled items", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*storage.ScheduledItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
