// Package domain defines the core entities and errors of an orchestration
// run: tasks, crews, execution records, and service health snapshots.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrUnknownCrew is returned when a crew tag is outside the closed set
	// of known crew kinds.
	ErrUnknownCrew = errors.New("unknown crew")

	// ErrEmptyDescription is returned when a task carries no instruction.
	ErrEmptyDescription = errors.New("task description cannot be empty")

	// ErrInvalidPriority is returned when a task priority is negative.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrServiceUnavailable is returned when a required backend is offline
	// at dispatch time. Tasks failing this way consume no retry attempts.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrRetryExhausted is returned after the maximum attempt count is
	// reached. It wraps the final attempt's error detail.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)
