package orchestrator

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/phrazzld/taskforge/internal/domain"
)

// Mode selects how a batch is executed.
type Mode string

// Supported execution modes.
const (
	// ModeSequential runs every task one at a time in submission order,
	// ignoring priority.
	ModeSequential Mode = "sequential"

	// ModeParallel hands the entire batch to the worker pool at once,
	// ignoring priority.
	ModeParallel Mode = "parallel"

	// ModePriority partitions the batch into ascending priority groups and
	// drains each group fully before the next begins.
	ModePriority Mode = "priority"
)

// ScheduleOptions configures one scheduler run.
type ScheduleOptions struct {
	Mode Mode

	// ParallelWithinGroup runs priority groups through the worker pool
	// instead of sequentially. Only meaningful in ModePriority.
	ParallelWithinGroup bool

	// MaxWorkers bounds pool concurrency for parallel execution.
	MaxWorkers int
}

// PriorityScheduler partitions a batch into ordered priority groups and
// drives execution group by group. Group N+1 never starts before every
// group N task has reached a terminal record.
type PriorityScheduler struct {
	runner      *TaskRunner
	coordinator *ParallelCoordinator
	health      HealthChecker
	ledger      Ledger
	logger      *slog.Logger
}

// NewPriorityScheduler creates a PriorityScheduler.
func NewPriorityScheduler(
	runner *TaskRunner,
	coordinator *ParallelCoordinator,
	checker HealthChecker,
	statusLedger Ledger,
	logger *slog.Logger,
) *PriorityScheduler {
	return &PriorityScheduler{
		runner:      runner,
		coordinator: coordinator,
		health:      checker,
		ledger:      statusLedger,
		logger:      logger,
	}
}

// Run executes the batch under the given options and returns results in
// execution order. The health snapshot is taken once up front for
// observability; an offline service never blocks the whole batch because
// gating happens per task in the runner.
func (s *PriorityScheduler) Run(
	ctx context.Context,
	tasks []domain.Task,
	opts ScheduleOptions,
) []domain.BatchResult {
	snapshot := s.health.CheckAll(ctx)
	for name, status := range snapshot {
		s.logger.Info("service status",
			"service", name,
			"state", status.State)
	}
	s.ledger.SetServices(snapshot)

	s.logger.Info("starting scheduler run",
		"mode", opts.Mode,
		"task_count", len(tasks))

	switch opts.Mode {
	case ModeParallel:
		return s.coordinator.RunAll(ctx, tasks, opts.MaxWorkers)
	case ModePriority:
		return s.runPriority(ctx, tasks, opts)
	case ModeSequential:
		return s.runSequential(ctx, tasks)
	default:
		s.logger.Warn("unknown mode, falling back to sequential",
			"mode", opts.Mode)
		return s.runSequential(ctx, tasks)
	}
}

// runSequential executes tasks one at a time in submission order.
func (s *PriorityScheduler) runSequential(
	ctx context.Context,
	tasks []domain.Task,
) []domain.BatchResult {
	results := make([]domain.BatchResult, 0, len(tasks))
	for i, task := range tasks {
		s.logger.Info("processing task",
			"index", i+1,
			"total", len(tasks),
			"crew", task.Crew)

		start := time.Now()
		record := s.runner.Run(ctx, task)
		results = append(results, batchResult(task, record, time.Since(start)))
	}
	return results
}

// runPriority partitions tasks into ascending priority groups, preserving
// submission order within each group, and drains them in order.
func (s *PriorityScheduler) runPriority(
	ctx context.Context,
	tasks []domain.Task,
	opts ScheduleOptions,
) []domain.BatchResult {
	groups := make(map[int][]domain.Task)
	for _, task := range tasks {
		p := task.EffectivePriority()
		groups[p] = append(groups[p], task)
	}

	priorities := make([]int, 0, len(groups))
	for p := range groups {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	results := make([]domain.BatchResult, 0, len(tasks))
	for _, p := range priorities {
		group := groups[p]
		s.logger.Info("starting priority group",
			"priority", p,
			"task_count", len(group),
			"parallel", opts.ParallelWithinGroup)

		if opts.ParallelWithinGroup {
			results = append(results, s.coordinator.RunAll(ctx, group, opts.MaxWorkers)...)
		} else {
			results = append(results, s.runSequential(ctx, group)...)
		}
	}
	return results
}
