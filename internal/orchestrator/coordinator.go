package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskforge/internal/domain"
)

// ParallelCoordinator runs a batch of tasks across a bounded worker pool.
// One task's failure (including retry exhaustion) never cancels or blocks
// its siblings; each worker blocks independently during its own backoff
// and network calls.
type ParallelCoordinator struct {
	runner *TaskRunner
	logger *slog.Logger
}

// NewParallelCoordinator creates a ParallelCoordinator over the given
// runner.
func NewParallelCoordinator(runner *TaskRunner, logger *slog.Logger) *ParallelCoordinator {
	return &ParallelCoordinator{
		runner: runner,
		logger: logger,
	}
}

// RunAll executes every task and returns one BatchResult per task in
// completion order. Callers needing submission order must re-sort by task
// identity. maxWorkers bounds concurrency; values below 1 run a single
// worker.
func (c *ParallelCoordinator) RunAll(
	ctx context.Context,
	tasks []domain.Task,
	maxWorkers int,
) []domain.BatchResult {
	if len(tasks) == 0 {
		return nil
	}

	if maxWorkers < 1 {
		c.logger.Warn("invalid worker count specified, using default",
			"specified_count", maxWorkers,
			"default_count", 1)
		maxWorkers = 1
	}
	if maxWorkers > len(tasks) {
		maxWorkers = len(tasks)
	}

	c.logger.Info("starting batch",
		"task_count", len(tasks),
		"worker_count", maxWorkers)

	taskChan := make(chan domain.Task)
	resultChan := make(chan domain.BatchResult)

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.logger.Debug("starting worker", "worker_id", workerID)
			for task := range taskChan {
				resultChan <- c.execute(ctx, task)
			}
			c.logger.Debug("stopping worker", "worker_id", workerID)
		}(i)
	}

	go func() {
		for _, task := range tasks {
			taskChan <- task
		}
		close(taskChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]domain.BatchResult, 0, len(tasks))
	for result := range resultChan {
		results = append(results, result)
	}

	c.logger.Info("batch complete", "result_count", len(results))
	return results
}

// execute runs one task through the runner and wraps its record as a
// batch result.
func (c *ParallelCoordinator) execute(ctx context.Context, task domain.Task) domain.BatchResult {
	start := time.Now()
	record := c.runner.Run(ctx, task)
	return batchResult(task, record, time.Since(start))
}

// batchResult converts a terminal record into the batch-level view of the
// same outcome.
func batchResult(
	task domain.Task,
	record domain.TaskExecutionRecord,
	elapsed time.Duration,
) domain.BatchResult {
	preview := record.Detail
	if record.Status == domain.TaskStatusSuccess {
		if p, ok := record.Metadata["preview"].(string); ok && p != "" {
			preview = p
		}
	}

	return domain.BatchResult{
		Task:          task,
		Status:        record.Status,
		Elapsed:       elapsed,
		ResultPreview: domain.TruncatePreview(preview),
		Timestamp:     time.Now().UTC(),
	}
}
