package httpapi

import (
	"net/http"
	"strconv"

	"leadhunt/internal/store"
)

type HistoryHandler struct {
	DB *store.DB
}

// List returns recent runs. Query: ?limit=N (default 50).
func (h HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		writeJSON(w, map[string]any{"runs": []store.Run{}})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.DB.ListRuns(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, map[string]any{"runs": runs})
}
