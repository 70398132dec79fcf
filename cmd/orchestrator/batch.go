package main

import (
	"fmt"
	"os"

	"github.com/phrazzld/taskforge/internal/domain"
	"gopkg.in/yaml.v3"
)

// batchFile is the YAML shape of a task batch:
//
//	tasks:
//	  - crew: character
//	    description: Scorpion
//	    priority: 1
type batchFile struct {
	Tasks []batchTask `yaml:"tasks"`
}

type batchTask struct {
	Crew        string `yaml:"crew"`
	Description string `yaml:"description"`
	Priority    int    `yaml:"priority"`
}

// loadBatch reads and validates a YAML batch file into tasks, preserving
// file order as submission order.
func loadBatch(path string) ([]domain.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var file batchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid batch file %s: %w", path, err)
	}
	if len(file.Tasks) == 0 {
		return nil, fmt.Errorf("batch file %s contains no tasks", path)
	}

	tasks := make([]domain.Task, 0, len(file.Tasks))
	for i, entry := range file.Tasks {
		task, err := domain.NewTask(domain.Crew(entry.Crew), entry.Description, entry.Priority)
		if err != nil {
			return nil, fmt.Errorf("invalid task %d in %s: %w", i+1, path, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
