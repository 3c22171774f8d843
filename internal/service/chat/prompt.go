package chat

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// promptLayout is the single-turn layout the local model is prompted with.
const promptLayout = "System: {system}\n\n{user}: {message}\n{assistant}:"

var turnTemplate = prompt.FromMessages(schema.FString, schema.UserMessage(promptLayout))

// assemblePrompt renders the system text, labeled user turn and the open
// assistant turn into one prompt string.
func assemblePrompt(ctx context.Context, system, userName, assistantName, message string) (string, error) {
	msgs, err := turnTemplate.Format(ctx, map[string]any{
		"system":    system,
		"user":      userName,
		"message":   message,
		"assistant": assistantName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format prompt: %w", err)
	}
	if len(msgs) != 1 {
		return "", fmt.Errorf("prompt template produced %d messages", len(msgs))
	}
	return msgs[0].Content, nil
}
