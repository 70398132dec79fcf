package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	task, err := NewTask(CrewCode, "Create HealthUI.cs", 2)
	require.NoError(t, err)
	assert.Equal(t, CrewCode, task.Crew)
	assert.Equal(t, "Create HealthUI.cs", task.Description)
	assert.Equal(t, 2, task.Priority)
}

func TestNewTaskUnknownCrew(t *testing.T) {
	_, err := NewTask(Crew("dance"), "anything", 1)
	assert.ErrorIs(t, err, ErrUnknownCrew)
}

func TestNewTaskEmptyDescription(t *testing.T) {
	_, err := NewTask(CrewAsset, "", 1)
	assert.ErrorIs(t, err, ErrEmptyDescription)
}

func TestNewTaskNegativePriority(t *testing.T) {
	_, err := NewTask(CrewCode, "Create InputManager.cs", -1)
	assert.ErrorIs(t, err, ErrInvalidPriority)
}

func TestEffectivePriority(t *testing.T) {
	explicit, err := NewTask(CrewCharacter, "Scorpion", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, explicit.EffectivePriority())

	unset, err := NewTask(CrewCode, "Create RoundManager.cs", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPriority, unset.EffectivePriority())
}

func TestCrewValid(t *testing.T) {
	assert.True(t, CrewCode.Valid())
	assert.True(t, CrewAsset.Valid())
	assert.True(t, CrewCharacter.Valid())
	assert.False(t, Crew("").Valid())
	assert.False(t, Crew("mk2").Valid())
}

func TestTruncatePreview(t *testing.T) {
	short := "OK: wrote script"
	assert.Equal(t, short, TruncatePreview(short))

	long := strings.Repeat("x", PreviewLimit+100)
	truncated := TruncatePreview(long)
	assert.Len(t, truncated, PreviewLimit)
}
