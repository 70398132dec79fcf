// Package crew defines the boundary between the orchestration core and
// the external generation collaborators. Each crew kind maps to exactly
// one registered Invoker; the orchestrator treats invocation as an opaque,
// possibly-failing operation with a string payload.
package crew

import (
	"context"
	"fmt"

	"github.com/phrazzld/taskforge/internal/domain"
)

// Invoker executes one task against an external generation backend.
type Invoker interface {
	// Invoke runs the task and returns the result payload. Failures are
	// reported as *ExecutionError; the orchestrator does not inspect the
	// payload beyond producing a truncated preview.
	Invoke(ctx context.Context, task domain.Task) (string, error)
}

// ExecutionError reports a failed crew invocation. It is the retryable
// error class: the retry executor keeps attempting until its budget runs
// out.
type ExecutionError struct {
	Crew    domain.Crew
	Message string
	Err     error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s crew: %s: %v", e.Crew, e.Message, e.Err)
	}
	return fmt.Sprintf("%s crew: %s", e.Crew, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Registry maps the closed set of crew kinds to their invokers.
type Registry struct {
	invokers map[domain.Crew]Invoker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{invokers: make(map[domain.Crew]Invoker)}
}

// Register binds a crew kind to its invoker. Unknown crew kinds and
// duplicate registrations are rejected.
func (r *Registry) Register(c domain.Crew, invoker Invoker) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCrew, c)
	}
	if _, exists := r.invokers[c]; exists {
		return fmt.Errorf("crew %q already registered", c)
	}
	r.invokers[c] = invoker
	return nil
}

// Resolve returns the invoker for a crew kind.
func (r *Registry) Resolve(c domain.Crew) (Invoker, error) {
	invoker, ok := r.invokers[c]
	if !ok {
		return nil, fmt.Errorf("%w: no invoker registered for %q", domain.ErrUnknownCrew, c)
	}
	return invoker, nil
}
