package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"leadhunt/internal/domain"
	"leadhunt/internal/runner"
)

type RunsHandler struct {
	Runs *runner.Manager
}

func (h RunsHandler) Start(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var c domain.SearchCriteria
	if err := dec.Decode(&c); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	snap, err := h.Runs.Start(c)
	switch {
	case errors.Is(err, runner.ErrTooManyRuns):
		WriteError(w, r, http.StatusConflict, "busy", err.Error())
		return
	case err != nil:
		WriteError(w, r, http.StatusBadRequest, "invalid_criteria", err.Error())
		return
	}
	WriteJSON(w, http.StatusAccepted, snap)
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"runs": h.Runs.List()})
}

func (h RunsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/runs/")
	snap, ok := h.Runs.Get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "not_found", "run not found")
		return
	}
	writeJSON(w, snap)
}

func (h RunsHandler) CancelByPath(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "/runs/")
	if err := h.Runs.Cancel(id); err != nil {
		WriteError(w, r, http.StatusNotFound, "not_found", "run not found")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
