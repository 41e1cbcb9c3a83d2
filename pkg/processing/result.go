package processing

import (
	"fmt"
	"time"

	"github.com/systemstart/reviewflow/pkg/workers"
)

// Status of a run or step.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StepError is a fatal step failure. Path is the slash-joined node path from
// the pipeline root.
type StepError struct {
	Path string
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q (%s): %v", e.Step, e.Path, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepRecord reports one executed step.
type StepRecord struct {
	Path     string               `json:"path"`
	Name     string               `json:"name"`
	Output   string               `json:"output"`
	Status   Status               `json:"status"`
	Error    string               `json:"error,omitempty"`
	Calls    []workers.CallRecord `json:"calls,omitempty"`
	Started  time.Time            `json:"started"`
	Duration time.Duration        `json:"duration"`
}

// RunResult is the outcome of one run. On failure it still carries every
// output published before the failure.
type RunResult struct {
	RunID    string         `json:"run_id"`
	Pipeline string         `json:"pipeline"`
	Status   Status         `json:"status"`
	Steps    []StepRecord   `json:"steps"`
	Context  map[string]any `json:"context"`
	Outputs  map[string]any `json:"outputs"`
	Report   string         `json:"report,omitempty"`
	FailedAt string         `json:"failed_at,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Succeeded reports whether the run completed.
func (r *RunResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}
