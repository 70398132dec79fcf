// Package ledger keeps the process-wide, append-only record of task
// outcomes. Appends are serialized under a mutex so concurrent workers can
// record results safely; durability is delegated to a Sink collaborator.
package ledger

import (
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskforge/internal/domain"
)

// Sink persists execution records. Implementations must be safe for
// concurrent use; the ledger serializes its own appends but other writers
// may share the sink.
type Sink interface {
	// Write appends one record to durable storage.
	Write(record domain.TaskExecutionRecord) error
}

// StatusLedger is the in-process source of truth for task outcomes within
// a run. Records are append-only: the count never decreases during the
// process lifetime.
type StatusLedger struct {
	mu       sync.Mutex
	records  []domain.TaskExecutionRecord
	services map[string]domain.ServiceStatus
	sink     Sink
	logger   *slog.Logger
}

// New creates a StatusLedger delegating durable writes to sink. A nil sink
// keeps records in memory only.
func New(sink Sink, logger *slog.Logger) *StatusLedger {
	return &StatusLedger{
		sink:   sink,
		logger: logger,
	}
}

// Append records one task outcome. A sink failure is logged but does not
// propagate: the in-memory record stands, and the task's own outcome is
// already decided by the time it reaches the ledger.
func (l *StatusLedger) Append(record domain.TaskExecutionRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, record)

	if l.sink != nil {
		if err := l.sink.Write(record); err != nil {
			l.logger.Error("failed to persist ledger record",
				"crew", record.Crew,
				"status", record.Status,
				"error", err)
		}
	}

	l.logger.Debug("ledger record appended",
		"crew", record.Crew,
		"status", record.Status,
		"total_records", len(l.records))
}

// SetServices stores the most recent health snapshot for inclusion in
// summaries.
func (l *StatusLedger) SetServices(snapshot map[string]domain.ServiceStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.services = make(map[string]domain.ServiceStatus, len(snapshot))
	for name, status := range snapshot {
		l.services[name] = status
	}
}

// Count returns the number of appended records.
func (l *StatusLedger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns a copy of all appended records in append order.
func (l *StatusLedger) Records() []domain.TaskExecutionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.TaskExecutionRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Summarize aggregates the ledger. It reflects every append that completed
// before the call; there is no eventual-consistency window within a
// process run.
func (l *StatusLedger) Summarize() domain.Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := make(map[domain.TaskStatus]int)
	var last time.Time
	for _, r := range l.records {
		counts[r.Status]++
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	services := make(map[string]domain.ServiceStatus, len(l.services))
	for name, status := range l.services {
		services[name] = status
	}

	return domain.Summary{
		Total:          len(l.records),
		CountsByStatus: counts,
		Services:       services,
		LastUpdated:    last,
	}
}
