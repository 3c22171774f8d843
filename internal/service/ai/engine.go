package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhouzirui/persona-chat/backend/internal/config"
)

// ErrEmptyResponse is returned when a backend answers without any choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Sampling carries the per-request generation parameters.
type Sampling struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Engine turns a fully assembled prompt into generated text. Implementations
// make a single attempt and report every failure as *InferenceError.
type Engine interface {
	Generate(ctx context.Context, prompt string, params Sampling) (string, error)
	Backend() string
}

// InferenceError wraps any failure raised by an inference backend.
type InferenceError struct {
	Backend string
	Err     error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s inference failed: %v", e.Backend, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// NewEngine builds the backend selected by cfg.Backend.
func NewEngine(ctx context.Context, cfg config.AIConfig) (Engine, error) {
	switch cfg.Backend {
	case config.BackendArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		engine, err := NewChatModelEngine(ctx, config.BackendArk, chatModel)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case config.BackendOpenAI, "":
		return NewCompletionEngine(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, config.NewConfigError("LLM_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.Backend))
	}
}
