package persona

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/persona-chat/backend/internal/model/persona"
	"github.com/zhouzirui/persona-chat/backend/pkg/utils"
)

// Handler persona服务的HTTP处理器
type Handler struct {
	personas  persona.Store
	defaultID persona.ID
}

// New 创建persona处理器。defaultID 是未指定 persona 时使用的默认值。
func New(personas persona.Store, defaultID persona.ID) *Handler {
	if _, ok := personas.FindByID(defaultID); !ok {
		defaultID = personas.Fallback()
	}
	return &Handler{
		personas:  personas,
		defaultID: defaultID,
	}
}

// RegisterRoutes 注册persona相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/prompt", h.handleDefaultPrompt)
	r.Get("/personas/{personaID}/prompt", h.handleDefaultPrompt)
}

type personaSummary struct {
	ID   persona.ID `json:"id"`
	Name string     `json:"name"`
}

// handleListPersonas 列出所有persona，顺序即选择器顺序
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	items := h.personas.List()
	out := make([]personaSummary, 0, len(items))
	for _, item := range items {
		out = append(out, personaSummary{ID: item.ID, Name: item.Name})
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

// handleDefaultPrompt returns the stored prompt used to pre-fill the override
// editor. A missing persona means the default persona; unknown personas
// resolve to the fallback persona.
func (h *Handler) handleDefaultPrompt(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "personaID"))
	id := h.defaultID
	if key != "" {
		var ok bool
		if id, ok = h.personas.ParseID(key); !ok {
			id = h.personas.Fallback()
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"persona": string(id),
		"prompt":  h.personas.Lookup(id),
	})
}
