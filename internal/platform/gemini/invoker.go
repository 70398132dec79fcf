// Package gemini implements the code and character crew invokers on top
// of the Gemini API. It abstracts the details of the LLM integration so
// the orchestration core treats generation as an opaque operation.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/phrazzld/taskforge/internal/config"
	"github.com/phrazzld/taskforge/internal/crew"
	"github.com/phrazzld/taskforge/internal/domain"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model produces no usable text.
var ErrEmptyResponse = errors.New("empty response from language model")

const codePromptTemplate = `You are a senior Unity C# developer on a 2D fighting game.
Write clean, idiomatic Unity C# using SpriteRenderer, Animator, Physics2D
and the Input System. The code must compile in Unity as-is.

Task: {{.Description}}

Return only the complete C# source file, no commentary.`

const characterPromptTemplate = `You are a fighting game architect and Unity C# developer.
Implement {{.Description}}Controller.cs for a 2D fighting game.

Requirements:
- Inherit from the existing CharacterController base class
- Add the character's special move states and input detection
- Include frame data (startup, active, recovery) and hitbox registration
- Use the CharacterState enum for state transitions

Return only the complete C# source file, no commentary.`

// promptData is the template input for prompt rendering.
type promptData struct {
	Description string
}

// Invoker executes code and character generation tasks against the Gemini
// API. Retries are owned by the orchestration core; a single Invoke call
// is one attempt.
type Invoker struct {
	logger    *slog.Logger
	client    *genai.Client
	model     string
	code      *template.Template
	character *template.Template
}

// NewInvoker creates a Gemini-backed Invoker from the LLM configuration.
func NewInvoker(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Invoker, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if cfg.ModelName == "" {
		return nil, errors.New("model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	code, err := template.New("code").Parse(codePromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse code prompt template: %w", err)
	}
	character, err := template.New("character").Parse(characterPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse character prompt template: %w", err)
	}

	return &Invoker{
		logger:    logger,
		client:    client,
		model:     cfg.ModelName,
		code:      code,
		character: character,
	}, nil
}

// Invoke renders the crew-specific prompt and performs one generation
// call. Failures come back as *crew.ExecutionError so the retry executor
// treats them as retryable.
func (g *Invoker) Invoke(ctx context.Context, task domain.Task) (string, error) {
	prompt, err := g.buildPrompt(task)
	if err != nil {
		return "", &crew.ExecutionError{Crew: task.Crew, Message: "prompt rendering failed", Err: err}
	}

	g.logger.DebugContext(ctx, "calling Gemini API",
		"model", g.model,
		"crew", task.Crew,
		"prompt_length", len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &crew.ExecutionError{Crew: task.Crew, Message: "generation call failed", Err: err}
	}

	text := resp.Text()
	if text == "" {
		return "", &crew.ExecutionError{Crew: task.Crew, Message: "empty response", Err: ErrEmptyResponse}
	}

	g.logger.DebugContext(ctx, "Gemini API call succeeded",
		"crew", task.Crew,
		"response_length", len(text))

	return text, nil
}

// buildPrompt renders the template matching the task's crew.
func (g *Invoker) buildPrompt(task domain.Task) (string, error) {
	tmpl := g.code
	if task.Crew == domain.CrewCharacter {
		tmpl = g.character
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Description: task.Description}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
