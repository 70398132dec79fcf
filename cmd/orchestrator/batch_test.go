package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/taskforge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBatch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBatch(t *testing.T) {
	path := writeBatch(t, `
tasks:
  - crew: character
    description: Scorpion
    priority: 1
  - crew: code
    description: Create HealthUI.cs
    priority: 2
  - crew: asset
    description: workflows/sprite_gen.json
`)

	tasks, err := loadBatch(path)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, domain.CrewCharacter, tasks[0].Crew)
	assert.Equal(t, "Scorpion", tasks[0].Description)
	assert.Equal(t, 1, tasks[0].Priority)

	assert.Equal(t, domain.CrewCode, tasks[1].Crew)
	assert.Equal(t, 2, tasks[1].Priority)

	assert.Equal(t, domain.CrewAsset, tasks[2].Crew)
	assert.Equal(t, domain.DefaultPriority, tasks[2].EffectivePriority())
}

func TestLoadBatchUnknownCrew(t *testing.T) {
	path := writeBatch(t, `
tasks:
  - crew: mk2
    description: something
`)

	_, err := loadBatch(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownCrew)
	assert.Contains(t, err.Error(), "task 1")
}

func TestLoadBatchEmpty(t *testing.T) {
	path := writeBatch(t, "tasks: []\n")
	_, err := loadBatch(path)
	assert.Error(t, err)
}

func TestLoadBatchMissingFile(t *testing.T) {
	_, err := loadBatch(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolveTasksSingle(t *testing.T) {
	opts := &cliOptions{Crew: "code", Task: "Create InputManager.cs", Priority: 3}
	tasks, err := resolveTasks(opts)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.CrewCode, tasks[0].Crew)
	assert.Equal(t, 3, tasks[0].Priority)
}

func TestResolveTasksNothingToRun(t *testing.T) {
	_, err := resolveTasks(&cliOptions{})
	assert.Error(t, err)
}
