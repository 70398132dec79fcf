// Package main implements the entry point for the taskforge orchestrator,
// which coordinates generation tasks (code, asset, character) against
// external backend services with retries, priority groups, and an
// append-only status ledger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
	"github.com/phrazzld/taskforge/internal/config"
	"github.com/phrazzld/taskforge/internal/crew"
	"github.com/phrazzld/taskforge/internal/domain"
	"github.com/phrazzld/taskforge/internal/health"
	"github.com/phrazzld/taskforge/internal/ledger"
	"github.com/phrazzld/taskforge/internal/orchestrator"
	"github.com/phrazzld/taskforge/internal/platform/comfy"
	"github.com/phrazzld/taskforge/internal/platform/gemini"
	"github.com/phrazzld/taskforge/internal/platform/jsonl"
	"github.com/phrazzld/taskforge/internal/platform/logger"
)

// cliOptions holds every command line flag.
type cliOptions struct {
	Mode           string
	Retries        int
	RetryDelay     time.Duration
	Workers        int
	ParallelGroups bool
	CheckOnly      bool
	BatchPath      string
	Crew           string
	Task           string
	Priority       int
}

// registerFlags declares the application flags on the kingpin app.
func registerFlags(app *kingpin.Application) *cliOptions {
	opts := &cliOptions{}

	app.Flag("mode", "Execution mode.").
		Default(string(orchestrator.ModeSequential)).
		EnumVar(&opts.Mode,
			string(orchestrator.ModeSequential),
			string(orchestrator.ModeParallel),
			string(orchestrator.ModePriority))
	app.Flag("retries", "Maximum invocation attempts per task.").
		Default("0").IntVar(&opts.Retries)
	app.Flag("retry-delay", "Base backoff delay between attempts.").
		Default("0s").DurationVar(&opts.RetryDelay)
	app.Flag("workers", "Worker pool size for parallel execution.").
		Default("0").IntVar(&opts.Workers)
	app.Flag("parallel-groups", "Run tasks within a priority group in parallel.").
		BoolVar(&opts.ParallelGroups)
	app.Flag("check", "Check service health and exit.").
		BoolVar(&opts.CheckOnly)
	app.Flag("batch", "YAML file describing the task batch.").
		StringVar(&opts.BatchPath)
	app.Flag("crew", "Crew for a single ad-hoc task.").
		EnumVar(&opts.Crew,
			string(domain.CrewCode),
			string(domain.CrewAsset),
			string(domain.CrewCharacter))
	app.Flag("task", "Description for a single ad-hoc task.").
		StringVar(&opts.Task)
	app.Flag("priority", "Priority for a single ad-hoc task.").
		Default("0").IntVar(&opts.Priority)

	return opts
}

func main() {
	app := kingpin.New("taskforge", "Generation task orchestrator for code, asset and character crews.")
	opts := registerFlags(app)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	os.Exit(run(context.Background(), opts))
}

// run wires the application together and executes the requested batch.
// Returns the process exit code: 0 only when every task succeeded.
func run(ctx context.Context, opts *cliOptions) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 2
	}

	log, err := logger.Setup(cfg.Orchestrator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		return 2
	}

	// Flags override config where given.
	maxRetries := cfg.Orchestrator.MaxRetries
	if opts.Retries > 0 {
		maxRetries = opts.Retries
	}
	retryDelay := time.Duration(cfg.Orchestrator.RetryDelaySeconds) * time.Second
	if opts.RetryDelay > 0 {
		retryDelay = opts.RetryDelay
	}
	workers := cfg.Orchestrator.WorkerCount
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	checker := health.NewChecker(map[string]string{
		health.ServiceLLM:     cfg.LLM.BaseURL + "/v1/models",
		health.ServiceComfyUI: cfg.Comfy.BaseURL + "/system_stats",
	}, time.Duration(cfg.Health.ProbeTimeoutSeconds)*time.Second, log)

	if opts.CheckOnly {
		return runCheck(ctx, checker)
	}

	tasks, err := resolveTasks(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	}

	sink, err := jsonl.NewSink(cfg.Orchestrator.LedgerPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open ledger: %v\n", err)
		return 2
	}
	defer func() { _ = sink.Close() }()

	registry, err := buildRegistry(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build crew registry: %v\n", err)
		return 2
	}

	runID := uuid.New()
	log.Info("starting run",
		"run_id", runID,
		"mode", opts.Mode,
		"task_count", len(tasks),
		"max_retries", maxRetries,
		"workers", workers)

	statusLedger := ledger.New(sink, log)
	retry := orchestrator.NewRetryExecutor(maxRetries, retryDelay, log)
	runner := orchestrator.NewTaskRunner(registry, checker, statusLedger, retry, log)
	coordinator := orchestrator.NewParallelCoordinator(runner, log)
	scheduler := orchestrator.NewPriorityScheduler(runner, coordinator, checker, statusLedger, log)

	results := scheduler.Run(ctx, tasks, orchestrator.ScheduleOptions{
		Mode:                orchestrator.Mode(opts.Mode),
		ParallelWithinGroup: opts.ParallelGroups,
		MaxWorkers:          workers,
	})

	return report(log, statusLedger, results)
}

// runCheck prints the health snapshot and exits 0 only if every service is
// online.
func runCheck(ctx context.Context, checker *health.Checker) int {
	code := 0
	for name, status := range checker.CheckAll(ctx) {
		fmt.Printf("%s: %s\n", name, status.State)
		if status.State != domain.ServiceOnline {
			code = 1
		}
	}
	return code
}

// resolveTasks builds the batch from the flags: either a YAML batch file
// or a single crew/task pair.
func resolveTasks(opts *cliOptions) ([]domain.Task, error) {
	if opts.BatchPath != "" {
		return loadBatch(opts.BatchPath)
	}
	if opts.Crew != "" && opts.Task != "" {
		task, err := domain.NewTask(domain.Crew(opts.Crew), opts.Task, opts.Priority)
		if err != nil {
			return nil, err
		}
		return []domain.Task{task}, nil
	}
	return nil, fmt.Errorf("nothing to run: provide --batch or both --crew and --task")
}

// buildRegistry binds every crew kind to its invoker.
func buildRegistry(ctx context.Context, cfg *config.Config, log *slog.Logger) (*crew.Registry, error) {
	registry := crew.NewRegistry()

	llm, err := gemini.NewInvoker(ctx, log, cfg.LLM)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(domain.CrewCode, llm); err != nil {
		return nil, err
	}
	if err := registry.Register(domain.CrewCharacter, llm); err != nil {
		return nil, err
	}

	if err := registry.Register(domain.CrewAsset, comfy.NewInvoker(cfg.Comfy, log)); err != nil {
		return nil, err
	}

	return registry, nil
}

// report prints the run summary and derives the exit code from it.
func report(log *slog.Logger, statusLedger *ledger.StatusLedger, results []domain.BatchResult) int {
	summary := statusLedger.Summarize()
	failed := summary.CountsByStatus[domain.TaskStatusFailed]

	log.Info("run complete",
		"total", summary.Total,
		"success", summary.CountsByStatus[domain.TaskStatusSuccess],
		"failed", failed)

	for _, result := range results {
		line := fmt.Sprintf("[%s] %s (%s): %s",
			result.Status, result.Task.Description, result.Task.Crew, result.ResultPreview)
		fmt.Println(line)
	}
	fmt.Printf("Success: %d/%d\n", summary.CountsByStatus[domain.TaskStatusSuccess], summary.Total)

	if failed > 0 {
		return 1
	}
	return 0
}
