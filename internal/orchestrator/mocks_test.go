package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/taskforge/internal/crew"
	"github.com/phrazzld/taskforge/internal/domain"
	"github.com/phrazzld/taskforge/internal/health"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// stubHealth implements HealthChecker with fixed per-service states.
// Services without an entry report online.
type stubHealth struct {
	states        map[string]domain.ServiceState
	checkAllCalls atomic.Int32
}

func (s *stubHealth) Check(ctx context.Context, serviceName string) domain.ServiceStatus {
	state := domain.ServiceOnline
	if st, ok := s.states[serviceName]; ok {
		state = st
	}
	return domain.ServiceStatus{ServiceName: serviceName, State: state}
}

func (s *stubHealth) CheckAll(ctx context.Context) map[string]domain.ServiceStatus {
	s.checkAllCalls.Add(1)
	return map[string]domain.ServiceStatus{
		health.ServiceLLM:     s.Check(ctx, health.ServiceLLM),
		health.ServiceComfyUI: s.Check(ctx, health.ServiceComfyUI),
	}
}

// stubInvoker implements crew.Invoker with a configurable function and
// tracks invocation order and in-flight concurrency.
type stubInvoker struct {
	fn func(ctx context.Context, task domain.Task) (string, error)

	mu          sync.Mutex
	invocations []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (s *stubInvoker) Invoke(ctx context.Context, task domain.Task) (string, error) {
	current := s.inFlight.Add(1)
	for {
		observed := s.maxInFlight.Load()
		if current <= observed || s.maxInFlight.CompareAndSwap(observed, current) {
			break
		}
	}
	defer s.inFlight.Add(-1)

	s.mu.Lock()
	s.invocations = append(s.invocations, task.Description)
	s.mu.Unlock()

	if s.fn != nil {
		return s.fn(ctx, task)
	}
	return "ok: " + task.Description, nil
}

func (s *stubInvoker) invocationLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.invocations))
	copy(out, s.invocations)
	return out
}

// failNTimes returns an invoker function that fails the first n calls per
// task description, then succeeds.
func failNTimes(n int) func(ctx context.Context, task domain.Task) (string, error) {
	var mu sync.Mutex
	failures := make(map[string]int)
	return func(ctx context.Context, task domain.Task) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if failures[task.Description] < n {
			failures[task.Description]++
			return "", &crew.ExecutionError{
				Crew:    task.Crew,
				Message: "backend error",
			}
		}
		return "ok: " + task.Description, nil
	}
}

// newTestRegistry registers the same stub invoker for every crew kind.
func newTestRegistry(invoker crew.Invoker) *crew.Registry {
	registry := crew.NewRegistry()
	for _, c := range []domain.Crew{domain.CrewCode, domain.CrewAsset, domain.CrewCharacter} {
		if err := registry.Register(c, invoker); err != nil {
			panic(err)
		}
	}
	return registry
}

// newFastRetry builds a retry executor whose backoff waits return
// immediately while still being observable.
func newFastRetry(maxRetries int, logger *slog.Logger) (*RetryExecutor, *[]time.Duration) {
	executor := NewRetryExecutor(maxRetries, 10*time.Millisecond, logger)
	delays := &[]time.Duration{}
	var mu sync.Mutex
	executor.wait = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		*delays = append(*delays, d)
		return nil
	}
	return executor, delays
}

func mustTask(crewKind domain.Crew, description string, priority int) domain.Task {
	task, err := domain.NewTask(crewKind, description, priority)
	if err != nil {
		panic(err)
	}
	return task
}
