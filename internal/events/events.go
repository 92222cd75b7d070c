package events

import (
	"encoding/json"
	"time"
)

// Event types published while a run progresses.
const (
	RunStarted  = "run_started"
	PageFetched = "page_fetched"
	PageRetry   = "page_retry"
	LeadFound   = "lead_found"
	RunFinished = "run_finished"
	RunSaved    = "run_saved"
)

type Event struct {
	Type    string          `json:"type"`
	Version int             `json:"v"`
	At      time.Time       `json:"at"`
	RunID   string          `json:"run_id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(runID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:    typ,
		Version: v,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Parse decodes an event produced by MakeEvent.
func Parse(s string) (Event, error) {
	var e Event
	err := json.Unmarshal([]byte(s), &e)
	return e, err
}
