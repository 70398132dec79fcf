// Package health probes external backend services and reports per-service
// status. A failed probe is a valid result, never an error: unreachable
// services report offline, reachable-but-erroring services report
// degraded.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/phrazzld/taskforge/internal/domain"
)

// Known service names. Crew kinds resolve to these when the runner gates
// execution.
const (
	ServiceLLM     = "llm"
	ServiceComfyUI = "comfyui"
)

// Checker performs bounded-timeout HTTP reachability probes against the
// configured backend endpoints.
type Checker struct {
	client *http.Client
	probes map[string]string
	logger *slog.Logger
}

// NewChecker creates a Checker over the given service-name to probe-URL
// mapping. Every key of probes is a known service for CheckAll.
func NewChecker(probes map[string]string, timeout time.Duration, logger *slog.Logger) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		client: &http.Client{Timeout: timeout},
		probes: probes,
		logger: logger,
	}
}

// Check probes the named service and returns its status snapshot.
// A service with no configured probe URL reports offline.
func (c *Checker) Check(ctx context.Context, serviceName string) domain.ServiceStatus {
	url, ok := c.probes[serviceName]
	if !ok {
		c.logger.Warn("no probe configured for service", "service", serviceName)
		return domain.ServiceStatus{ServiceName: serviceName, State: domain.ServiceOffline}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("failed to build probe request",
			"service", serviceName,
			"url", url,
			"error", err)
		return domain.ServiceStatus{ServiceName: serviceName, State: domain.ServiceOffline}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Connection failure or timeout: the service is unreachable.
		c.logger.Debug("service probe failed",
			"service", serviceName,
			"error", err)
		return domain.ServiceStatus{ServiceName: serviceName, State: domain.ServiceOffline}
	}
	defer func() { _ = resp.Body.Close() }()

	state := domain.ServiceOnline
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		state = domain.ServiceDegraded
	}

	c.logger.Debug("service probe completed",
		"service", serviceName,
		"status_code", resp.StatusCode,
		"state", state)

	return domain.ServiceStatus{ServiceName: serviceName, State: state}
}

// CheckAll probes every known service and returns a snapshot keyed by
// service name. Services are checked in a stable order so the log output
// is deterministic.
func (c *Checker) CheckAll(ctx context.Context) map[string]domain.ServiceStatus {
	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	snapshot := make(map[string]domain.ServiceStatus, len(names))
	for _, name := range names {
		snapshot[name] = c.Check(ctx, name)
	}
	return snapshot
}
