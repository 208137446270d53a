package runrecord

import "time"

// Status is an invocation's lifecycle state. Transitions are owned by the
// scheduler: pending → running → succeeded | failed. Never reused.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Invocation is one execution of a stage against one sample (or the collected
// set for barrier stages).
type Invocation struct {
	ID           string
	RunID        string
	Stage        string
	Sample       string
	Status       Status
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
	ExitCode     *int
	ErrorMessage string
	Outputs      []string
	PublishError string
}

// Duration returns the running time, zero until finished.
func (inv *Invocation) Duration() time.Duration {
	if inv.StartedAt == nil || inv.FinishedAt == nil {
		return 0
	}
	return inv.FinishedAt.Sub(*inv.StartedAt)
}

// Summary aggregates a run's terminal state.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Pending   int
}

// Success reports overall success: every invocation reached succeeded.
func (s Summary) Success() bool {
	return s.Total > 0 && s.Succeeded == s.Total
}
