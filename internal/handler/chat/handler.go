package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/persona-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/persona-chat/backend/internal/service/chat"
	"github.com/zhouzirui/persona-chat/backend/pkg/utils"
)

// examplePrompts are offered by the UI as one-click messages.
var examplePrompts = []string{
	"Give me a poetic description of the sea",
	"How can I deal with stress?",
	"Tell me a Bitcoin joke",
	"What is the meaning of life?",
	"Why is Bitcoin better than fiat?",
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.handleSettings)
	r.Post("/sessions", h.handleCreateSession)
	r.Route("/sessions/{sessionID}", func(s chi.Router) {
		s.Get("/", h.handleGetSession)
		s.Delete("/", h.handleDeleteSession)
		s.Post("/messages", h.handleSubmit)
		s.Post("/reset", h.handleReset)
		s.Get("/override", h.handleGetOverride)
		s.Put("/override", h.handleApplyOverride)
		s.Delete("/override", h.handleClearOverride)
	})
}

type rangeSpec struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// handleSettings describes the UI controls and their defaults.
func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"defaults": h.chatSvc.Settings(),
		"ranges": map[string]rangeSpec{
			"temperature": {Min: chatService.MinTemperature, Max: chatService.MaxTemperature, Step: 0.05},
			"topP":        {Min: chatService.MinTopP, Max: chatService.MaxTopP, Step: 0.05},
			"maxTokens":   {Min: chatService.MinMaxTokens, Max: chatService.MaxMaxTokens, Step: 16},
		},
		"examples": examplePrompts,
	})
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit 提交一条消息并返回更新后的对话记录
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload chat.SubmitPayload
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chatSvc.Submit(r.Context(), chi.URLParam(r, "sessionID"), h.chatSvc.BuildRequest(payload))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.chatSvc.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"transcript": transcript})
}

func (h *Handler) handleGetOverride(w http.ResponseWriter, r *http.Request) {
	override, err := h.chatSvc.Override(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"override": override})
}

func (h *Handler) handleApplyOverride(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.chatSvc.ApplyOverride(r.Context(), chi.URLParam(r, "sessionID"), payload.Prompt); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"override": payload.Prompt})
}

func (h *Handler) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.ClearOverride(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *chatService.ValidationError
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &validationErr):
		utils.RespondFieldError(w, http.StatusBadRequest, validationErr.Field, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
