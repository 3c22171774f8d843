package stream

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/persona-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/persona-chat/backend/internal/service/chat"
	"github.com/zhouzirui/persona-chat/backend/pkg/utils"
)

// loadingMessages are shown while the model is generating.
var loadingMessages = []string{
	"🎭 Getting into character...",
	"🎪 Warming up the comedy circuits...",
	"📖 Flipping through the wisdom archives...",
	"🧠 Analyzing with philosophical depth...",
	"₿ Syncing with the Bitcoin blockchain...",
}

// Handler delivers a submission's progress and result via Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
	pick    func(n int) int
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, pick: rand.Intn}
}

// RegisterRoutes registers the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// StreamResponse is the payload of every SSE event.
type StreamResponse struct {
	SessionID  string       `json:"sessionId,omitempty"`
	Status     string       `json:"status,omitempty"`
	Entry      *chat.Entry  `json:"entry,omitempty"`
	Transcript []chat.Entry `json:"transcript,omitempty"`
	Skipped    bool         `json:"skipped,omitempty"`
	Finished   bool         `json:"finished,omitempty"`
	Error      string       `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	payload, err := payloadFromQuery(r.URL.Query())
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	sse, err := utils.NewSSEWriter(w)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := sse.Send("start", StreamResponse{
		SessionID: sessionID,
		Status:    loadingMessages[h.pick(len(loadingMessages))],
	}); err != nil {
		return
	}

	result, err := h.chatSvc.Submit(r.Context(), sessionID, h.chatSvc.BuildRequest(payload))
	if err != nil {
		var validationErr *chatService.ValidationError
		if !errors.As(err, &validationErr) && !errors.Is(err, chatService.ErrSessionNotFound) {
			log.Error().Err(err).Str("session", sessionID).Msg("stream submit failed")
		}
		_ = sse.Send("error", StreamResponse{SessionID: sessionID, Error: err.Error()})
		return
	}

	if err := sse.Send("message", StreamResponse{
		SessionID:  sessionID,
		Entry:      result.Entry,
		Transcript: result.Transcript,
		Skipped:    result.Skipped,
	}); err != nil {
		log.Debug().Err(err).Str("session", sessionID).Msg("client left before the result was delivered")
		return
	}
	_ = sse.Send("end", StreamResponse{SessionID: sessionID, Finished: true})
}

// payloadFromQuery reads a submission from query parameters. Sampling fields
// that are absent stay nil so defaults apply.
func payloadFromQuery(q url.Values) (chat.SubmitPayload, error) {
	payload := chat.SubmitPayload{
		Message:       q.Get("message"),
		Persona:       q.Get("persona"),
		Override:      q.Get("override"),
		UserName:      q.Get("userName"),
		AssistantName: q.Get("assistantName"),
	}

	if raw := q.Get("temperature"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return payload, fmt.Errorf("invalid temperature %q", raw)
		}
		payload.Temperature = &v
	}
	if raw := q.Get("topP"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return payload, fmt.Errorf("invalid topP %q", raw)
		}
		payload.TopP = &v
	}
	if raw := q.Get("maxTokens"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return payload, fmt.Errorf("invalid maxTokens %q", raw)
		}
		payload.MaxTokens = &v
	}
	return payload, nil
}
