package ai

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// CompletionEngine sends raw prompts to an OpenAI-compatible /completions
// endpoint, which is what llama.cpp server, Ollama and LM Studio expose for
// locally hosted models.
type CompletionEngine struct {
	client *openai.Client
	model  string
}

// NewCompletionEngine creates an engine for the server at baseURL (for example
// "http://127.0.0.1:8080/v1"). Local servers usually ignore apiKey.
func NewCompletionEngine(baseURL, apiKey, model string) *CompletionEngine {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &CompletionEngine{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Backend implements Engine.
func (e *CompletionEngine) Backend() string {
	return "openai"
}

// Generate implements Engine.
func (e *CompletionEngine) Generate(ctx context.Context, prompt string, params Sampling) (string, error) {
	log.Debug().
		Str("backend", e.Backend()).
		Str("model", e.model).
		Int("max_tokens", params.MaxTokens).
		Int("prompt_length", len(prompt)).
		Msg("sending completion request")

	resp, err := e.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       e.model,
		Prompt:      prompt,
		MaxTokens:   params.MaxTokens,
		Temperature: wireFloat(params.Temperature),
		TopP:        wireFloat(params.TopP),
	})
	if err != nil {
		return "", &InferenceError{Backend: e.Backend(), Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &InferenceError{Backend: e.Backend(), Err: ErrEmptyResponse}
	}

	log.Debug().
		Str("backend", e.Backend()).
		Int("response_length", len(resp.Choices[0].Text)).
		Str("finish_reason", resp.Choices[0].FinishReason).
		Msg("received completion")

	return resp.Choices[0].Text, nil
}

// wireFloat keeps an explicit 0 on the wire. CompletionRequest drops zero
// sampling fields via omitempty, which lets the server apply its own default.
func wireFloat(v float32) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return v
}
