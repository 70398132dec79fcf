package domain

import "time"

// TaskStatus represents the terminal state of an executed task
type TaskStatus string

// Possible task status values. The set is deliberately small: service
// unavailability and retry exhaustion are both "failed" and are
// distinguished by the record detail text.
const (
	TaskStatusSuccess TaskStatus = "success"
	TaskStatusFailed  TaskStatus = "failed"
)

// PreviewLimit caps result previews and detail text carried on records.
const PreviewLimit = 500

// TruncatePreview shortens s to PreviewLimit characters for inclusion in
// records and batch results.
func TruncatePreview(s string) string {
	if len(s) <= PreviewLimit {
		return s
	}
	return s[:PreviewLimit]
}

// TaskExecutionRecord is one task's terminal outcome, appended to the
// status ledger. Records are never mutated after creation.
type TaskExecutionRecord struct {
	Crew        Crew           `json:"crew"`
	Description string         `json:"description"`
	Status      TaskStatus     `json:"status"`
	Detail      string         `json:"detail"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// BatchResult is the outcome of one task within a batch run, in the order
// tasks completed (not the order they were submitted).
type BatchResult struct {
	Task          Task
	Status        TaskStatus
	Elapsed       time.Duration
	ResultPreview string
	Timestamp     time.Time
}

// Summary aggregates the ledger's view of a run.
type Summary struct {
	Total          int
	CountsByStatus map[TaskStatus]int
	Services       map[string]ServiceStatus
	LastUpdated    time.Time
}
