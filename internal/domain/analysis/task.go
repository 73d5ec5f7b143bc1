package analysis

import (
	"time"
)

// TaskID identifier type
type TaskID string

// Status enum for an analysis task
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Aggregate root: analysis Task. Mutated only by the orchestrator under its
// lock; callers always receive copies.
type Task struct {
	ID         TaskID        `json:"id"`
	Repo       string        `json:"repo"`
	Status     Status        `json:"status"`
	Progress   int           `json:"progress"`
	Message    string        `json:"message"`
	Result     *ScoredResult `json:"result,omitempty"`
	Err        *Error        `json:"error,omitempty"`
	Cached     bool          `json:"cached"`
	ArchiveURL string        `json:"archive_url,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
