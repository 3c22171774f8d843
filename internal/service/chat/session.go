package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/persona-chat/backend/internal/model/chat"
	"github.com/zhouzirui/persona-chat/backend/internal/model/persona"
	"github.com/zhouzirui/persona-chat/backend/internal/service/ai"
)

const failurePrefix = "Oops! Something went wrong: "

// session is the mutable state of one conversation. submitMu serializes
// submissions and resets, and is held across the engine call so a persona
// counter and the transcript advance together. mu guards the fields below it
// and is only held briefly, so reads never wait on inference.
type session struct {
	id        string
	createdAt time.Time

	submitMu sync.Mutex

	mu         sync.Mutex
	counters   map[persona.ID]int
	transcript []chat.Entry
	override   string
}

func newSession(id string, createdAt time.Time) *session {
	return &session{
		id:        id,
		createdAt: createdAt,
		counters:  make(map[persona.ID]int),
	}
}

func (s *session) snapshot() chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make(map[string]int, len(s.counters))
	for id, n := range s.counters {
		counters[string(id)] = n
	}

	return chat.Session{
		ID:         s.id,
		CreatedAt:  s.createdAt,
		Override:   s.override,
		Counters:   counters,
		Transcript: s.transcriptLocked(),
	}
}

func (s *session) transcriptLocked() []chat.Entry {
	out := make([]chat.Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Result describes the outcome of a submission.
type Result struct {
	// Skipped is set when the message was empty and nothing changed.
	Skipped    bool         `json:"skipped"`
	Entry      *chat.Entry  `json:"entry,omitempty"`
	Transcript []chat.Entry `json:"transcript"`
}

// Submit records one turn. Empty messages are ignored. Inference failures are
// recorded as an error entry instead of being returned; the only errors
// returned are ErrSessionNotFound and *ValidationError.
func (s *Service) Submit(ctx context.Context, sessionID string, req Request) (Result, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Result{}, err
	}

	if req.Message == "" {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return Result{Skipped: true, Transcript: sess.transcriptLocked()}, nil
	}
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	sess.submitMu.Lock()
	defer sess.submitMu.Unlock()

	sess.mu.Lock()
	selected := s.resolvePersona(req.Persona)
	sess.counters[selected]++
	turn := sess.counters[selected]
	sessionOverride := sess.override
	sess.mu.Unlock()

	promptPersona := s.rotation.PromptPersona(selected, turn)

	entry := chat.Entry{
		UserMessage:   req.Message,
		PersonaID:     string(selected),
		PromptPersona: string(promptPersona),
		Turn:          turn,
	}

	response, err := s.generate(ctx, s.systemPrompt(promptPersona, req.Override, sessionOverride), req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("session", sessionID).
			Str("persona", string(selected)).
			Int("turn", turn).
			Msg("generation failed")
		entry.UserMessage = chat.ErrorLabel
		entry.Response = failurePrefix + err.Error()
		entry.Failed = true
	} else {
		entry.Response = strings.TrimSpace(response)
		log.Info().
			Str("session", sessionID).
			Str("persona", string(selected)).
			Str("prompt_persona", string(promptPersona)).
			Int("turn", turn).
			Int("length", len(entry.Response)).
			Msg("generated response")
	}

	entry.CreatedAt = s.now()

	sess.mu.Lock()
	sess.transcript = append(sess.transcript, entry)
	transcript := sess.transcriptLocked()
	sess.mu.Unlock()

	return Result{Entry: &entry, Transcript: transcript}, nil
}

// systemPrompt picks the per-turn override, then the session override, then
// the persona's stored prompt.
func (s *Service) systemPrompt(id persona.ID, turnOverride, sessionOverride string) string {
	if !isBlank(turnOverride) {
		return turnOverride
	}
	if !isBlank(sessionOverride) {
		return sessionOverride
	}
	return s.personas.Lookup(id)
}

func (s *Service) generate(ctx context.Context, system string, req Request) (string, error) {
	userName := req.UserName
	if isBlank(userName) {
		userName = s.settings.UserName
	}
	assistantName := req.AssistantName
	if isBlank(assistantName) {
		assistantName = s.settings.AssistantName
	}

	fullPrompt, err := assemblePrompt(ctx, system, userName, assistantName, req.Message)
	if err != nil {
		return "", err
	}

	if s.engine == nil {
		return "", &ai.InferenceError{Backend: "none", Err: ErrEngineUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.engine.Generate(ctx, fullPrompt, req.sampling())
	if err != nil {
		var inferenceErr *ai.InferenceError
		if !errors.As(err, &inferenceErr) {
			err = &ai.InferenceError{Backend: s.engine.Backend(), Err: err}
		}
		return "", err
	}
	return text, nil
}
