package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
)

// ChatModelEngine runs the assembled prompt through an eino chat model as a
// single user message.
type ChatModelEngine struct {
	backend string
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// NewChatModelEngine compiles the template -> model chain for chatModel.
func NewChatModelEngine(ctx context.Context, backend string, chatModel model.ChatModel) (*ChatModelEngine, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ChatModelEngine{backend: backend, chain: runnable}, nil
}

// Backend implements Engine.
func (e *ChatModelEngine) Backend() string {
	return e.backend
}

// Generate implements Engine.
func (e *ChatModelEngine) Generate(ctx context.Context, promptText string, params Sampling) (string, error) {
	response, err := e.chain.Invoke(ctx, map[string]any{"prompt": promptText},
		compose.WithChatModelOption(
			model.WithTemperature(params.Temperature),
			model.WithTopP(params.TopP),
			model.WithMaxTokens(params.MaxTokens),
		),
	)
	if err != nil {
		return "", &InferenceError{Backend: e.backend, Err: err}
	}
	if response == nil {
		return "", &InferenceError{Backend: e.backend, Err: ErrEmptyResponse}
	}

	log.Debug().Str("backend", e.backend).Int("response_length", len(response.Content)).Msg("received chat model response")
	return response.Content, nil
}
