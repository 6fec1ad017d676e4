package domain

import "time"

type StepStatus string
type StepName string

// Severity decides how a step failure affects the rest of the sequence.
type Severity string

const (
	StepPending   StepStatus = "PENDING"
	StepRunning   StepStatus = "RUNNING"
	StepSucceeded StepStatus = "SUCCEEDED"
	StepFailed    StepStatus = "FAILED"
	StepSkipped   StepStatus = "SKIPPED"
)

const (
	StepDBService    StepName = "db-service"
	StepWorkdir      StepName = "workdir"
	StepVenvActivate StepName = "venv-activate"
	StepPythonPath   StepName = "python-path"
	StepAPIServer    StepName = "api-server"
	StepOperatorWait StepName = "operator-wait"
)

const (
	// SeverityAdvisory failures are logged and the sequence continues.
	SeverityAdvisory Severity = "advisory"
	// SeverityFatal failures abort the run; remaining steps are skipped.
	SeverityFatal Severity = "fatal"
	// SeverityUnchecked outcomes are recorded but never gate the sequence.
	SeverityUnchecked Severity = "unchecked"
)

type StepResult struct {
	Name       StepName   `json:"name"`
	Status     StepStatus `json:"status"`
	Severity   Severity   `json:"severity"`
	ExitCode   int        `json:"exit_code"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at,omitzero"`
	DurationMs int64      `json:"duration_ms"`
}
