package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/persona-chat/backend/internal/model/persona"
	"github.com/zhouzirui/persona-chat/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/persona-chat/backend/internal/service/chat"
)

type echoEngine struct{}

func (echoEngine) Generate(_ context.Context, _ string, params ai.Sampling) (string, error) {
	return "  echoed  ", nil
}

func (echoEngine) Backend() string { return "echo" }

type sseEvent struct {
	name string
	data StreamResponse
}

func readEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &current.data))
		case line == "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func setup(t *testing.T) (*chi.Mux, *chatservice.Service, string) {
	t.Helper()
	chatSvc := chatservice.NewService(persona.MustRegistry(), echoEngine{}, chatservice.Config{})
	session, err := chatSvc.CreateSession(context.Background())
	require.NoError(t, err)

	h := New(chatSvc)
	h.pick = func(int) int { return 1 }
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, chatSvc, session.ID
}

func TestStreamDeliversStartMessageEnd(t *testing.T) {
	r, _, id := setup(t)

	q := url.Values{"message": {"hello"}, "persona": {"Philosopher Bot"}, "maxTokens": {"128"}}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+id+"?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	events := readEvents(t, resp.Body.String())
	require.Len(t, events, 3)

	assert.Equal(t, "start", events[0].name)
	assert.Equal(t, loadingMessages[1], events[0].data.Status)

	assert.Equal(t, "message", events[1].name)
	require.NotNil(t, events[1].data.Entry)
	assert.Equal(t, "echoed", events[1].data.Entry.Response)
	assert.Equal(t, string(persona.PhilosopherBot), events[1].data.Entry.PersonaID)

	assert.Equal(t, "end", events[2].name)
	assert.True(t, events[2].data.Finished)
}

func TestStreamValidationErrorEvent(t *testing.T) {
	r, chatSvc, id := setup(t)

	q := url.Values{"message": {"hello"}, "topP": {"3"}}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+id+"?"+q.Encode(), nil))

	events := readEvents(t, resp.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[1].name)
	assert.Contains(t, events[1].data.Error, "topP")

	transcript, err := chatSvc.Transcript(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, transcript)
}

func TestStreamRejectsBadQuery(t *testing.T) {
	r, _, id := setup(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+id+"?message=hi&maxTokens=lots", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStreamUnknownSession(t *testing.T) {
	r, _, _ := setup(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/missing?message=hi", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPayloadFromQuery(t *testing.T) {
	payload, err := payloadFromQuery(url.Values{
		"message":     {"hi"},
		"temperature": {"0"},
		"topP":        {"0.5"},
	})
	require.NoError(t, err)
	require.NotNil(t, payload.Temperature)
	assert.Equal(t, 0.0, *payload.Temperature)
	assert.Equal(t, 0.5, *payload.TopP)
	assert.Nil(t, payload.MaxTokens)
}
