package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskforge/internal/domain"
)

// Operation is a single invocation attempt against an external
// collaborator: it returns a success payload or fails.
type Operation func(ctx context.Context) (string, error)

// RetryResult carries the outcome of a retry-wrapped operation.
type RetryResult struct {
	// Payload is the success payload; empty when Err is set.
	Payload string

	// Attempts is the number of invocation attempts performed.
	Attempts int

	// Err is nil on success. On exhaustion it wraps
	// domain.ErrRetryExhausted with the final attempt's error detail.
	Err error
}

// RetryExecutor wraps an operation with bounded retries and exponential
// backoff. The backoff sleep happens in the calling goroutine only, so a
// retrying worker never stalls its siblings.
type RetryExecutor struct {
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger

	// wait blocks for the backoff delay; injectable so tests can observe
	// delays without sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

// NewRetryExecutor creates a RetryExecutor. maxRetries is the total
// attempt budget (not the number of re-tries after the first attempt).
// Invalid values fall back to safe defaults.
func NewRetryExecutor(maxRetries int, retryDelay time.Duration, logger *slog.Logger) *RetryExecutor {
	if maxRetries < 1 {
		logger.Warn("invalid max retries value, using default",
			"specified", maxRetries,
			"default", 1)
		maxRetries = 1
	}
	if retryDelay <= 0 {
		logger.Warn("invalid retry delay value, using default",
			"specified", retryDelay.String(),
			"default", "2s")
		retryDelay = 2 * time.Second
	}

	return &RetryExecutor{
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
		wait:       waitContext,
	}
}

// Execute attempts op until it succeeds or the attempt budget is
// exhausted. The delay before attempt n+1 is retryDelay * 2^(n-1); the
// first attempt has no preceding delay.
func (e *RetryExecutor) Execute(ctx context.Context, op Operation) RetryResult {
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		e.logger.Info("executing attempt",
			"attempt", attempt,
			"max_attempts", e.maxRetries)

		payload, err := op(ctx)
		if err == nil {
			e.logger.Info("attempt succeeded", "attempt", attempt)
			return RetryResult{Payload: payload, Attempts: attempt}
		}

		e.logger.Error("attempt failed",
			"attempt", attempt,
			"error", err)

		if attempt == e.maxRetries {
			return RetryResult{
				Attempts: attempt,
				Err: fmt.Errorf("%w after %d attempts: %v",
					domain.ErrRetryExhausted, attempt, err),
			}
		}

		delay := e.retryDelay * (1 << (attempt - 1))
		e.logger.Info("backing off before retry",
			"attempt", attempt,
			"delay", delay.String())

		if waitErr := e.wait(ctx, delay); waitErr != nil {
			// The surrounding run is shutting down; surface the last
			// operation error rather than inventing a new failure class.
			return RetryResult{
				Attempts: attempt,
				Err: fmt.Errorf("%w after %d attempts: %v",
					domain.ErrRetryExhausted, attempt, err),
			}
		}
	}

	// Unreachable: the loop always returns on the final attempt.
	return RetryResult{Err: domain.ErrRetryExhausted}
}

// waitContext blocks for d or until the context is cancelled.
func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
