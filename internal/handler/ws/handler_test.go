package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-chat/backend/internal/model/persona"
	"github.com/zhouzirui/persona-chat/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/persona-chat/backend/internal/service/chat"
)

type promptEngine struct {
	prompts chan string
}

func (e *promptEngine) Generate(_ context.Context, prompt string, _ ai.Sampling) (string, error) {
	e.prompts <- prompt
	return "ack", nil
}

func (e *promptEngine) Backend() string { return "prompt" }

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T) (*websocket.Conn, *promptEngine, *chatservice.Service, string) {
	t.Helper()
	engine := &promptEngine{prompts: make(chan string, 16)}
	chatSvc := chatservice.NewService(persona.MustRegistry(), engine, chatservice.Config{})
	session, err := chatSvc.CreateSession(context.Background())
	require.NoError(t, err)

	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + session.ID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn, engine, chatSvc, session.ID
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg any) received {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	var got received
	require.NoError(t, conn.ReadJSON(&got))
	return got
}

func TestWebSocketSubmitOverrideReset(t *testing.T) {
	conn, engine, chatSvc, id := dial(t)

	got := roundTrip(t, conn, map[string]any{"type": "ping"})
	assert.Equal(t, TypePong, got.Type)

	got = roundTrip(t, conn, map[string]any{
		"type": "submit",
		"data": map[string]any{"message": "hello", "persona": "therapist-bot"},
	})
	require.Equal(t, TypeEntry, got.Type)
	var result chatservice.Result
	require.NoError(t, json.Unmarshal(got.Data, &result))
	require.NotNil(t, result.Entry)
	assert.Equal(t, "ack", result.Entry.Response)
	assert.Contains(t, <-engine.prompts, persona.MustRegistry().Lookup(persona.TherapistBot))

	got = roundTrip(t, conn, map[string]any{"type": "override", "data": map[string]any{"prompt": "Be brief."}})
	assert.Equal(t, TypeOverride, got.Type)

	roundTrip(t, conn, map[string]any{"type": "submit", "data": map[string]any{"message": "again"}})
	assert.True(t, strings.HasPrefix(<-engine.prompts, "System: Be brief.\n\n"))

	got = roundTrip(t, conn, map[string]any{"type": "reset"})
	assert.Equal(t, TypeTranscript, got.Type)
	assert.JSONEq(t, `{"transcript":[]}`, string(got.Data))

	transcript, err := chatSvc.Transcript(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestWebSocketErrors(t *testing.T) {
	conn, _, _, _ := dial(t)

	got := roundTrip(t, conn, map[string]any{"type": "dance"})
	assert.Equal(t, TypeError, got.Type)
	assert.Contains(t, string(got.Data), "unsupported message type")

	got = roundTrip(t, conn, map[string]any{"type": "submit", "data": map[string]any{"message": "hi", "maxTokens": 5}})
	assert.Equal(t, TypeError, got.Type)
	assert.Contains(t, string(got.Data), `"field":"maxTokens"`)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	var bad received
	require.NoError(t, conn.ReadJSON(&bad))
	assert.Equal(t, TypeError, bad.Type)
}

func TestWebSocketUnknownSession(t *testing.T) {
	chatSvc := chatservice.NewService(persona.MustRegistry(), nil, chatservice.Config{})
	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/ws/missing", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"session not found"}`, resp.Body.String())
}
