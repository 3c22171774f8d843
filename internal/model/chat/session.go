package chat

import "time"

// Session is a point-in-time snapshot of one conversation.
type Session struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"createdAt"`
	Override   string         `json:"override,omitempty"`
	Counters   map[string]int `json:"counters"`
	Transcript []Entry        `json:"transcript"`
}

// SubmitPayload is the wire form of a submitted message. Nil sampling fields
// fall back to the configured defaults.
type SubmitPayload struct {
	Message       string   `json:"message"`
	Persona       string   `json:"persona"`
	Override      string   `json:"override,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"topP,omitempty"`
	MaxTokens     *int     `json:"maxTokens,omitempty"`
	UserName      string   `json:"userName,omitempty"`
	AssistantName string   `json:"assistantName,omitempty"`
}
