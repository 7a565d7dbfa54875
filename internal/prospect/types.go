package prospect

import (
	"encoding/json"

	"prospect-engine/internal/domain"
)

type launchRequest struct {
	Domain      string `json:"domain"`
	TitleFilter string `json:"title_filter"`
}

type launchResponse struct {
	JobID string `json:"job_id"`
}

type pollResponse struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output,omitempty"`
}

// PollResult is one status observation. Output is set only for SUCCEEDED.
type PollResult struct {
	Status domain.JobStatus
	Output *domain.ProspectResult
}
