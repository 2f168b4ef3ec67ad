package handlers

import (
	"log/slog"
	"net/http"
)

// SearchHandler runs a full-text query over the search index.
// GET /api/v1/search?q=&kind=&source=&limit=
func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.search.Search(r.Context(), q.Get("q"), q.Get("kind"), q.Get("source"), parseLimit(r, 0))
	if err != nil {
		slog.Error("Search failed", "error", err)
		http.Error(w, "Search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
