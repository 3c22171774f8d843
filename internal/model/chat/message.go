package chat

import "time"

// ErrorLabel fills the user slot of entries recording a failed generation.
const ErrorLabel = "Error"

// Entry is one completed turn of the transcript. Entries are never modified
// after they are appended.
type Entry struct {
	UserMessage   string    `json:"userMessage"`
	Response      string    `json:"response"`
	PersonaID     string    `json:"personaId"`
	PromptPersona string    `json:"promptPersonaId,omitempty"`
	Turn          int       `json:"turn"`
	Failed        bool      `json:"failed,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
