package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskforge/internal/crew"
	"github.com/phrazzld/taskforge/internal/domain"
	"github.com/phrazzld/taskforge/internal/health"
)

// HealthChecker gates task admission on backend reachability.
type HealthChecker interface {
	// Check returns the named service's current status.
	Check(ctx context.Context, serviceName string) domain.ServiceStatus

	// CheckAll returns a snapshot of every known service.
	CheckAll(ctx context.Context) map[string]domain.ServiceStatus
}

// Ledger receives task outcomes and health snapshots.
type Ledger interface {
	// Append records one terminal task outcome.
	Append(record domain.TaskExecutionRecord)

	// SetServices stores the latest health snapshot.
	SetServices(snapshot map[string]domain.ServiceStatus)
}

// TaskRunner executes one task end to end: health gating, retry-wrapped
// invocation, and outcome recording. Run is synchronous and
// self-contained, safe to invoke from any worker goroutine.
type TaskRunner struct {
	registry *crew.Registry
	health   HealthChecker
	ledger   Ledger
	retry    *RetryExecutor
	logger   *slog.Logger
}

// NewTaskRunner creates a TaskRunner.
func NewTaskRunner(
	registry *crew.Registry,
	checker HealthChecker,
	statusLedger Ledger,
	retry *RetryExecutor,
	logger *slog.Logger,
) *TaskRunner {
	return &TaskRunner{
		registry: registry,
		health:   checker,
		ledger:   statusLedger,
		retry:    retry,
		logger:   logger,
	}
}

// requiredServices maps a crew kind to the backends it depends on.
func requiredServices(c domain.Crew) []string {
	switch c {
	case domain.CrewAsset:
		return []string{health.ServiceComfyUI}
	default:
		// Code and character generation both run against the LLM backend.
		return []string{health.ServiceLLM}
	}
}

// Run executes the task and returns its terminal record. Every call
// appends exactly one record to the ledger, whatever the outcome: failures
// are captured here and never propagate to sibling tasks.
func (r *TaskRunner) Run(ctx context.Context, task domain.Task) domain.TaskExecutionRecord {
	start := time.Now()
	logger := r.logger.With(
		"crew", task.Crew,
		"priority", task.EffectivePriority(),
	)

	// Gate on health first: retrying against a known-offline service would
	// only burn the backoff budget.
	for _, service := range requiredServices(task.Crew) {
		status := r.health.Check(ctx, service)
		if status.State == domain.ServiceOffline {
			logger.Warn("required service offline, skipping execution",
				"service", service)
			return r.record(task, domain.TaskStatusFailed,
				fmt.Sprintf("%s: %s", domain.ErrServiceUnavailable, service),
				0, time.Since(start), "")
		}
	}

	invoker, err := r.registry.Resolve(task.Crew)
	if err != nil {
		logger.Error("no invoker for crew", "error", err)
		return r.record(task, domain.TaskStatusFailed, err.Error(),
			0, time.Since(start), "")
	}

	logger.Info("executing task")

	result := r.retry.Execute(ctx, func(ctx context.Context) (string, error) {
		return invoker.Invoke(ctx, task)
	})

	elapsed := time.Since(start)

	if result.Err != nil {
		logger.Error("task failed",
			"attempts", result.Attempts,
			"elapsed", elapsed.String(),
			"error", result.Err)
		return r.record(task, domain.TaskStatusFailed, result.Err.Error(),
			result.Attempts, elapsed, "")
	}

	logger.Info("task completed",
		"attempts", result.Attempts,
		"elapsed", elapsed.String())
	return r.record(task, domain.TaskStatusSuccess, "completed",
		result.Attempts, elapsed, domain.TruncatePreview(result.Payload))
}

// record builds the terminal record and appends it to the ledger.
func (r *TaskRunner) record(
	task domain.Task,
	status domain.TaskStatus,
	detail string,
	attempts int,
	elapsed time.Duration,
	preview string,
) domain.TaskExecutionRecord {
	metadata := map[string]any{
		"attempts":    attempts,
		"elapsed_sec": roundSeconds(elapsed),
	}
	if preview != "" {
		metadata["preview"] = preview
	}

	rec := domain.TaskExecutionRecord{
		Crew:        task.Crew,
		Description: task.Description,
		Status:      status,
		Detail:      domain.TruncatePreview(detail),
		Timestamp:   time.Now().UTC(),
		Metadata:    metadata,
	}

	r.ledger.Append(rec)
	return rec
}

// roundSeconds reports elapsed time in seconds with centisecond precision,
// matching the ledger's external format.
func roundSeconds(d time.Duration) float64 {
	return float64(d.Round(10*time.Millisecond)) / float64(time.Second)
}
