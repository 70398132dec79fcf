package crew

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/taskforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInvoker struct {
	payload string
}

func (s *stubInvoker) Invoke(ctx context.Context, task domain.Task) (string, error) {
	return s.payload, nil
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	registry := NewRegistry()
	invoker := &stubInvoker{payload: "done"}

	require.NoError(t, registry.Register(domain.CrewCode, invoker))

	resolved, err := registry.Resolve(domain.CrewCode)
	require.NoError(t, err)
	assert.Same(t, Invoker(invoker), resolved)
}

func TestRegistryRejectsUnknownCrew(t *testing.T) {
	registry := NewRegistry()
	err := registry.Register(domain.Crew("mk2"), &stubInvoker{})
	assert.ErrorIs(t, err, domain.ErrUnknownCrew)
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(domain.CrewAsset, &stubInvoker{}))
	assert.Error(t, registry.Register(domain.CrewAsset, &stubInvoker{}))
}

func TestRegistryResolveUnregistered(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Resolve(domain.CrewCharacter)
	assert.ErrorIs(t, err, domain.ErrUnknownCrew)
}

func TestExecutionError(t *testing.T) {
	inner := errors.New("connection reset")
	err := &ExecutionError{Crew: domain.CrewAsset, Message: "queue failed", Err: inner}

	assert.Contains(t, err.Error(), "asset crew")
	assert.Contains(t, err.Error(), "queue failed")
	assert.ErrorIs(t, err, inner)

	bare := &ExecutionError{Crew: domain.CrewCode, Message: "empty response"}
	assert.Equal(t, "code crew: empty response", bare.Error())
}
