package events

import (
	"encoding/json"
	"time"
)

const (
	TypeRunStarted   = "run_started"
	TypeRunFinished  = "run_finished"
	TypeLaunched     = "job_launched"
	TypeLaunchFailed = "launch_failed"
	TypePolled       = "job_polled"
	TypeSucceeded    = "job_succeeded"
	TypeFailed       = "job_failed"
	TypeAbandoned    = "job_abandoned"
)

// Event is one job lifecycle observation. Version bumps when fields change
// meaning.
type Event struct {
	Type     string          `json:"type"`
	Version  int             `json:"v"`
	At       time.Time       `json:"at"`
	RunID    string          `json:"run_id,omitempty"`
	Domain   string          `json:"domain,omitempty"`
	JobID    string          `json:"job_id,omitempty"`
	Status   string          `json:"status,omitempty"`
	Attempts int             `json:"attempts,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(runID, typ string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		RunID:   runID,
		Data:    raw,
	}
}
