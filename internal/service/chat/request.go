package chat

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/persona-chat/backend/internal/model/persona"
	"github.com/zhouzirui/persona-chat/backend/internal/service/ai"
)

// Control ranges exposed to the UI.
const (
	MinTemperature = 0.0
	MaxTemperature = 1.5
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinMaxTokens   = 64
	MaxMaxTokens   = 1024
)

// Request is a single submitted message with its generation settings.
type Request struct {
	Message string
	// Persona is an ID or display name; unknown values resolve to the fallback persona.
	Persona string
	// Override, when non-blank, replaces the system prompt for this turn only.
	Override      string
	Temperature   float64
	TopP          float64
	MaxTokens     int
	UserName      string
	AssistantName string
}

func (r Request) validate() error {
	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return NewValidationError("temperature", fmt.Sprintf("must be within [%.1f, %.1f]", MinTemperature, MaxTemperature))
	}
	if r.TopP < MinTopP || r.TopP > MaxTopP {
		return NewValidationError("topP", fmt.Sprintf("must be within [%.1f, %.1f]", MinTopP, MaxTopP))
	}
	if r.MaxTokens < MinMaxTokens || r.MaxTokens > MaxMaxTokens {
		return NewValidationError("maxTokens", fmt.Sprintf("must be within [%d, %d]", MinMaxTokens, MaxMaxTokens))
	}
	return nil
}

func (r Request) sampling() ai.Sampling {
	return ai.Sampling{
		Temperature: float32(r.Temperature),
		TopP:        float32(r.TopP),
		MaxTokens:   r.MaxTokens,
	}
}

// Settings holds the defaults applied to fields a client leaves unset.
type Settings struct {
	Temperature   float64    `json:"temperature"`
	TopP          float64    `json:"topP"`
	MaxTokens     int        `json:"maxTokens"`
	UserName      string     `json:"userName"`
	AssistantName string     `json:"assistantName"`
	Persona       persona.ID `json:"persona"`
}

// DefaultSettings mirrors the initial positions of the UI controls.
func DefaultSettings() Settings {
	return Settings{
		Temperature:   0.8,
		TopP:          0.9,
		MaxTokens:     512,
		UserName:      "Alice",
		AssistantName: "Bob",
		Persona:       persona.HumorBot,
	}
}

// Rotation substitutes Alternate for prompt selection on every Every-th turn
// of a persona, except for Exempt.
type Rotation struct {
	Every     int
	Alternate persona.ID
	Exempt    persona.ID
}

// DefaultRotation swaps in Black Ice Bot on every 7th turn unless the
// selected persona is Jailbreak Bot.
func DefaultRotation() Rotation {
	return Rotation{Every: 7, Alternate: persona.BlackIceBot, Exempt: persona.JailbreakBot}
}

// PromptPersona returns the persona whose prompt is used for the given turn of
// selected. turn is 1-based.
func (r Rotation) PromptPersona(selected persona.ID, turn int) persona.ID {
	if r.Every <= 0 || selected == r.Exempt {
		return selected
	}
	if turn%r.Every == 0 {
		return r.Alternate
	}
	return selected
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
