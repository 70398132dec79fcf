// Package comfy implements the asset crew invoker against the ComfyUI
// HTTP API: queue a workflow, then poll its history until outputs appear.
package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/phrazzld/taskforge/internal/config"
	"github.com/phrazzld/taskforge/internal/crew"
	"github.com/phrazzld/taskforge/internal/domain"
)

// ErrJobTimeout is returned when a queued workflow produces no outputs
// within the configured wait budget.
var ErrJobTimeout = errors.New("comfyui job did not complete in time")

// Invoker executes asset generation tasks. The task description is the
// path to a workflow JSON file; the result payload summarizes the queued
// prompt and its outputs.
type Invoker struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	timeout      time.Duration
	logger       *slog.Logger
}

// NewInvoker creates a ComfyUI-backed Invoker from the backend
// configuration.
func NewInvoker(cfg config.ComfyConfig, logger *slog.Logger) *Invoker {
	return &Invoker{
		baseURL:      cfg.BaseURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:       logger,
	}
}

// Invoke queues the workflow and waits for its outputs. Failures come back
// as *crew.ExecutionError so the retry executor treats them as retryable.
func (c *Invoker) Invoke(ctx context.Context, task domain.Task) (string, error) {
	workflow, err := loadWorkflow(task.Description)
	if err != nil {
		return "", &crew.ExecutionError{Crew: task.Crew, Message: "workflow load failed", Err: err}
	}

	promptID, err := c.queuePrompt(ctx, workflow)
	if err != nil {
		return "", &crew.ExecutionError{Crew: task.Crew, Message: "queue failed", Err: err}
	}

	c.logger.InfoContext(ctx, "workflow queued",
		"prompt_id", promptID,
		"workflow", task.Description)

	outputs, err := c.waitForOutputs(ctx, promptID)
	if err != nil {
		return "", &crew.ExecutionError{Crew: task.Crew, Message: "wait failed", Err: err}
	}

	return fmt.Sprintf("prompt %s completed with %d outputs", promptID, outputs), nil
}

// loadWorkflow reads and parses a workflow JSON file.
func loadWorkflow(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow %s: %w", path, err)
	}

	var workflow map[string]json.RawMessage
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("invalid workflow JSON in %s: %w", path, err)
	}
	return workflow, nil
}

// queuePrompt submits the workflow and returns the prompt ID.
func (c *Invoker) queuePrompt(ctx context.Context, workflow map[string]json.RawMessage) (string, error) {
	body, err := json.Marshal(map[string]any{"prompt": workflow})
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/prompt", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("cannot connect to ComfyUI at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("queue rejected with status %d: %s", resp.StatusCode, payload)
	}

	var queued struct {
		PromptID string `json:"prompt_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&queued); err != nil {
		return "", fmt.Errorf("failed to decode queue response: %w", err)
	}
	if queued.PromptID == "" {
		return "", errors.New("no prompt_id returned")
	}
	return queued.PromptID, nil
}

// waitForOutputs polls the history endpoint until the prompt reports
// outputs, the wait budget runs out, or the context is cancelled. Returns
// the output image count.
func (c *Invoker) waitForOutputs(ctx context.Context, promptID string) (int, error) {
	deadline := time.Now().Add(c.timeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		count, done, err := c.checkHistory(ctx, promptID)
		if err != nil {
			return 0, err
		}
		if done {
			return count, nil
		}

		if time.Now().After(deadline) {
			return 0, fmt.Errorf("%w: prompt %s after %s", ErrJobTimeout, promptID, c.timeout)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

// checkHistory fetches the prompt's history entry once. done is true when
// outputs are present.
func (c *Invoker) checkHistory(ctx context.Context, promptID string) (count int, done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/history/"+promptID, nil)
	if err != nil {
		return 0, false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("history poll failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var history map[string]struct {
		Outputs map[string]struct {
			Images []json.RawMessage `json:"images"`
		} `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return 0, false, fmt.Errorf("failed to decode history response: %w", err)
	}

	entry, ok := history[promptID]
	if !ok || len(entry.Outputs) == 0 {
		return 0, false, nil
	}

	for _, node := range entry.Outputs {
		count += len(node.Images)
	}
	return count, true, nil
}
