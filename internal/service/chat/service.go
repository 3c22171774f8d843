package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/persona-chat/backend/internal/model/chat"
	"github.com/zhouzirui/persona-chat/backend/internal/model/persona"
	"github.com/zhouzirui/persona-chat/backend/internal/service/ai"
)

// Config tunes a Service. Zero values are replaced with defaults.
type Config struct {
	Settings Settings
	Rotation Rotation
	Timeout  time.Duration
}

// Service owns independent conversation sessions keyed by id.
type Service struct {
	personas persona.Store
	engine   ai.Engine
	settings Settings
	rotation Rotation
	timeout  time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewService creates a chat service. engine may be nil, in which case every
// submission records an error entry.
func NewService(personas persona.Store, engine ai.Engine, cfg Config) *Service {
	if cfg.Settings == (Settings{}) {
		cfg.Settings = DefaultSettings()
	}
	if cfg.Rotation == (Rotation{}) {
		cfg.Rotation = DefaultRotation()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if _, ok := personas.FindByID(cfg.Settings.Persona); !ok {
		cfg.Settings.Persona = personas.Fallback()
	}

	return &Service{
		personas: personas,
		engine:   engine,
		settings: cfg.Settings,
		rotation: cfg.Rotation,
		timeout:  cfg.Timeout,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*session),
	}
}

// Settings returns the defaults applied to unset request fields.
func (s *Service) Settings() Settings {
	return s.settings
}

// BuildRequest converts a wire payload into a Request, filling unset fields
// from the configured defaults.
func (s *Service) BuildRequest(p chat.SubmitPayload) Request {
	req := Request{
		Message:       p.Message,
		Persona:       p.Persona,
		Override:      p.Override,
		Temperature:   s.settings.Temperature,
		TopP:          s.settings.TopP,
		MaxTokens:     s.settings.MaxTokens,
		UserName:      p.UserName,
		AssistantName: p.AssistantName,
	}
	if p.Temperature != nil {
		req.Temperature = *p.Temperature
	}
	if p.TopP != nil {
		req.TopP = *p.TopP
	}
	if p.MaxTokens != nil {
		req.MaxTokens = *p.MaxTokens
	}
	return req
}

// CreateSession provisions an empty conversation.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	sess := newSession(uuid.NewString(), s.now())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Info().Str("session", sess.id).Msg("session created")
	return sess.snapshot(), nil
}

// GetSession returns a snapshot of the session.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return sess.snapshot(), nil
}

// DeleteSession drops the session and its state.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// Transcript returns the session's entries in submission order.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Entry, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.transcriptLocked(), nil
}

// Counter reports how many messages were submitted for id since the last reset.
func (s *Service) Counter(_ context.Context, sessionID string, id persona.ID) (int, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.counters[id], nil
}

// Reset clears every persona counter and the transcript. The override prompt
// is left untouched.
func (s *Service) Reset(_ context.Context, sessionID string) ([]chat.Entry, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	// Waits for an in-flight submission so its entry is not appended after the reset.
	sess.submitMu.Lock()
	sess.mu.Lock()
	sess.counters = make(map[persona.ID]int)
	sess.transcript = nil
	sess.mu.Unlock()
	sess.submitMu.Unlock()

	log.Info().Str("session", sessionID).Msg("session reset")
	return []chat.Entry{}, nil
}

// DefaultPrompt returns the stored prompt for a persona key, used to pre-fill
// the override editor. A blank key means the configured default persona and
// an unknown key yields the fallback persona's prompt, as in Submit.
func (s *Service) DefaultPrompt(key string) string {
	return s.personas.Lookup(s.resolvePersona(key))
}

// ApplyOverride makes text the system prompt for subsequent turns. A blank
// text disables the override.
func (s *Service) ApplyOverride(_ context.Context, sessionID, text string) error {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.override = text
	sess.mu.Unlock()
	return nil
}

// ClearOverride restores persona-based prompt selection.
func (s *Service) ClearOverride(ctx context.Context, sessionID string) error {
	return s.ApplyOverride(ctx, sessionID, "")
}

// Override returns the session's current override prompt.
func (s *Service) Override(_ context.Context, sessionID string) (string, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.override, nil
}

func (s *Service) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// resolvePersona maps a request key onto the closed persona set.
func (s *Service) resolvePersona(key string) persona.ID {
	if isBlank(key) {
		return s.settings.Persona
	}
	if id, ok := s.personas.ParseID(key); ok {
		return id
	}
	return s.personas.Fallback()
}
