// Package jsonl implements the ledger sink collaborator as an append-only
// line-delimited JSON file, one self-contained record per line, so
// external tooling can tail or replay the ledger.
package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/phrazzld/taskforge/internal/domain"
)

// Sink appends execution records to a JSONL file.
type Sink struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// NewSink opens (or creates) the ledger file at path in append mode,
// creating parent directories as needed.
func NewSink(path string) (*Sink, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}

	return &Sink{file: file, path: path}, nil
}

// Write appends one record as a single JSON line.
func (s *Sink) Write(record domain.TaskExecutionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append ledger record: %w", err)
	}
	return nil
}

// Path returns the ledger file location.
func (s *Sink) Path() string {
	return s.path
}

// Close flushes and closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
