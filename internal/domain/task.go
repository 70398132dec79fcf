package domain

import (
	"fmt"
)

// Crew identifies which execution collaborator handles a task.
type Crew string

// Known crew kinds. Each one maps to a registered invoker; there is no
// open-ended string dispatch.
const (
	// CrewCode generates Unity C# scripts from a task description.
	CrewCode Crew = "code"

	// CrewAsset generates image assets through the ComfyUI backend.
	CrewAsset Crew = "asset"

	// CrewCharacter generates a complete character controller script.
	CrewCharacter Crew = "character"
)

// Valid reports whether the crew is one of the known kinds.
func (c Crew) Valid() bool {
	switch c {
	case CrewCode, CrewAsset, CrewCharacter:
		return true
	}
	return false
}

// DefaultPriority is the group assigned to tasks that carry no explicit
// priority, so tasks with explicit low values always run first.
const DefaultPriority = 100

// Task represents a single unit of generation work. It is immutable once
// constructed; execution produces a TaskExecutionRecord, never a mutation
// of the task itself.
type Task struct {
	// Crew selects the invocation collaborator for this task.
	Crew Crew

	// Description is the opaque instruction string passed to the crew.
	Description string

	// Priority is the execution group; lower values run earlier.
	// Zero means "no explicit priority" and resolves to DefaultPriority.
	Priority int
}

// NewTask constructs a validated task.
// Returns ErrUnknownCrew for a crew kind outside the closed set and
// ErrEmptyDescription when there is no instruction to execute.
func NewTask(crew Crew, description string, priority int) (Task, error) {
	if !crew.Valid() {
		return Task{}, fmt.Errorf("%w: %q", ErrUnknownCrew, crew)
	}
	if description == "" {
		return Task{}, ErrEmptyDescription
	}
	if priority < 0 {
		return Task{}, fmt.Errorf("%w: priority %d", ErrInvalidPriority, priority)
	}
	return Task{
		Crew:        crew,
		Description: description,
		Priority:    priority,
	}, nil
}

// EffectivePriority returns the task's priority group, substituting
// DefaultPriority when none was set.
func (t Task) EffectivePriority() int {
	if t.Priority == 0 {
		return DefaultPriority
	}
	return t.Priority
}
