package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunSucceeded RunStatus = "SUCCEEDED"
	RunDegraded  RunStatus = "DEGRADED"
	RunAborted   RunStatus = "ABORTED"
)

// RunReport is the full record of one bootstrap sequence execution.
// Steps appear in declaration order; after an abort the remaining
// entries carry StepSkipped.
type RunReport struct {
	ID         uuid.UUID    `json:"run_id"`
	Status     RunStatus    `json:"status"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at,omitzero"`
	Steps      []StepResult `json:"steps"`
}

// Terminal reports true once the run reached a final status.
func (r *RunReport) Terminal() bool {
	switch r.Status {
	case RunSucceeded, RunDegraded, RunAborted:
		return true
	}
	return false
}
