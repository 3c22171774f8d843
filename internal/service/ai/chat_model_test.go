package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-chat/backend/internal/config"
)

type fakeChatModel struct {
	reply   string
	err     error
	input   []*schema.Message
	options *model.Options
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.input = input
	m.options = model.GetCommonOptions(&model.Options{}, opts...)
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *fakeChatModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

func TestChatModelEngineGenerate(t *testing.T) {
	fake := &fakeChatModel{reply: "Why did the chicken {cross}?"}
	engine, err := NewChatModelEngine(context.Background(), "ark", fake)
	require.NoError(t, err)

	promptText := "System: {braces stay}\n\nAlice: tell me a joke\nBob:"
	text, err := engine.Generate(context.Background(), promptText, Sampling{Temperature: 0.5, TopP: 0.7, MaxTokens: 128})
	require.NoError(t, err)
	assert.Equal(t, "Why did the chicken {cross}?", text)

	require.Len(t, fake.input, 1)
	assert.Equal(t, schema.User, fake.input[0].Role)
	assert.Equal(t, promptText, fake.input[0].Content)

	require.NotNil(t, fake.options.Temperature)
	require.NotNil(t, fake.options.TopP)
	require.NotNil(t, fake.options.MaxTokens)
	assert.InDelta(t, 0.5, *fake.options.Temperature, 1e-6)
	assert.InDelta(t, 0.7, *fake.options.TopP, 1e-6)
	assert.Equal(t, 128, *fake.options.MaxTokens)
}

func TestChatModelEngineWrapsErrors(t *testing.T) {
	boom := errors.New("out of memory")
	engine, err := NewChatModelEngine(context.Background(), "ark", &fakeChatModel{err: boom})
	require.NoError(t, err)

	_, err = engine.Generate(context.Background(), "prompt", Sampling{MaxTokens: 64})
	require.Error(t, err)

	var inferenceErr *InferenceError
	require.True(t, errors.As(err, &inferenceErr))
	assert.Equal(t, "ark", inferenceErr.Backend)
	assert.ErrorIs(t, err, boom)
}

func TestNewEngineSelectsBackend(t *testing.T) {
	engine, err := NewEngine(context.Background(), config.AIConfig{Backend: config.BackendOpenAI, BaseURL: "http://127.0.0.1:1/v1", Model: "local"})
	require.NoError(t, err)
	assert.Equal(t, "openai", engine.Backend())

	_, err = NewEngine(context.Background(), config.AIConfig{Backend: config.BackendArk})
	assert.Error(t, err)

	_, err = NewEngine(context.Background(), config.AIConfig{Backend: "carrier-pigeon"})
	assert.Error(t, err)
}
