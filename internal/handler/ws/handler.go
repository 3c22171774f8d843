package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/persona-chat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/persona-chat/backend/internal/service/chat"
	"github.com/zhouzirui/persona-chat/backend/pkg/utils"
)

const maxFrameSize = 64 << 10

// Message types exchanged over the socket.
const (
	TypeSubmit     = "submit"
	TypeReset      = "reset"
	TypeOverride   = "override"
	TypePing       = "ping"
	TypeEntry      = "entry"
	TypeTranscript = "transcript"
	TypePong       = "pong"
	TypeError      = "error"
)

// Handler lets a client drive a session over a single WebSocket connection.
// Frames on one connection are processed in order.
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New creates the WebSocket handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the WebSocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type overrideData struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameSize)

	log.Info().Str("session", sessionID).Msg("websocket connected")
	defer log.Info().Str("session", sessionID).Msg("websocket closed")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", sessionID).Msg("websocket read failed")
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.send(conn, sessionID, TypeError, utils.ErrorBody{Error: "invalid message"})
			continue
		}

		if err := h.dispatch(r, conn, sessionID, msg); err != nil {
			h.send(conn, sessionID, TypeError, errorBody(err))
			if errors.Is(err, chatService.ErrSessionNotFound) {
				return
			}
		}
	}
}

func (h *Handler) dispatch(r *http.Request, conn *websocket.Conn, sessionID string, msg inboundMessage) error {
	ctx := r.Context()

	switch msg.Type {
	case TypeSubmit:
		var payload chat.SubmitPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return errors.New("invalid submit payload")
		}
		result, err := h.chatSvc.Submit(ctx, sessionID, h.chatSvc.BuildRequest(payload))
		if err != nil {
			return err
		}
		h.send(conn, sessionID, TypeEntry, result)
	case TypeReset:
		transcript, err := h.chatSvc.Reset(ctx, sessionID)
		if err != nil {
			return err
		}
		h.send(conn, sessionID, TypeTranscript, map[string]any{"transcript": transcript})
	case TypeOverride:
		var data overrideData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return errors.New("invalid override payload")
			}
		}
		if err := h.chatSvc.ApplyOverride(ctx, sessionID, data.Prompt); err != nil {
			return err
		}
		h.send(conn, sessionID, TypeOverride, map[string]string{"override": data.Prompt})
	case TypePing:
		h.send(conn, sessionID, TypePong, nil)
	default:
		return errors.New("unsupported message type: " + msg.Type)
	}
	return nil
}

func errorBody(err error) utils.ErrorBody {
	body := utils.ErrorBody{Error: err.Error()}
	var validationErr *chatService.ValidationError
	if errors.As(err, &validationErr) {
		body.Field = validationErr.Field
	}
	return body
}

func (h *Handler) send(conn *websocket.Conn, sessionID, msgType string, data any) {
	msg := outgoingMessage{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("session", sessionID).Str("type", msgType).Msg("websocket write failed")
	}
}
