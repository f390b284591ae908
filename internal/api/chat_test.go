package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dira-directory/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createChatViaAPI(t *testing.T, env *testEnv, sessionID string) uint {
	t.Helper()

	body := fmt.Sprintf(`{"sessionId": %q}`, sessionID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.CreateChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Chat.ID
}

func TestCreateChatEndpointQuota(t *testing.T) {
	env := newTestEnv(t, nil, authAs("ext-1"))

	for i := 0; i < 3; i++ {
		createChatViaAPI(t, env, "sess-1")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats",
		strings.NewReader(`{"sessionId": "sess-1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "CHAT_LIMIT_REACHED")
}

func TestChatQuotaEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, authAs("ext-1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats/quota", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Remaining int  `json:"remaining"`
		Unlimited bool `json:"unlimited"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Remaining)
	assert.False(t, resp.Unlimited)
}

func TestSendMessageStreamsSSE(t *testing.T) {
	streamer := &scriptedStreamer{chunks: []string{"Use ", "the ", "Registry"}}
	env := newTestEnv(t, streamer, authAs("ext-1"))
	chatID := createChatViaAPI(t, env, "sess-1")

	body := `{"sessionId": "sess-1", "message": "what should I use?"}`
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/chats/%d/messages", chatID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	events := w.Body.String()
	assert.Contains(t, events, `data: {"content":"Use "}`)
	assert.Contains(t, events, `data: {"content":"the "}`)
	assert.Contains(t, events, `data: {"content":"Registry"}`)
	assert.Contains(t, events, `"done":true`)
	assert.True(t, strings.HasSuffix(events, "data: [DONE]\n\n"))
}

func TestSendMessageChatNotFound(t *testing.T) {
	env := newTestEnv(t, nil, authAs("ext-1"))

	body := `{"sessionId": "sess-1", "message": "hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats/99/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestSendMessageUpstreamFailureBeforeStream(t *testing.T) {
	streamer := &scriptedStreamer{err: errors.New("gateway down")}
	env := newTestEnv(t, streamer, authAs("ext-1"))
	chatID := createChatViaAPI(t, env, "sess-1")

	body := `{"sessionId": "sess-1", "message": "hello"}`
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/chats/%d/messages", chatID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_ERROR")
}

func TestListMessagesEndpoint(t *testing.T) {
	env := newTestEnv(t, &scriptedStreamer{chunks: []string{"reply"}}, authAs("ext-1"))
	chatID := createChatViaAPI(t, env, "sess-1")

	body := `{"sessionId": "sess-1", "message": "hello"}`
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/chats/%d/messages", chatID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/chats/%d/messages?sessionId=sess-1", chatID), nil)
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, models.SenderUser, resp.Messages[0].Sender)
	assert.Equal(t, "reply", resp.Messages[1].Content)
}

func TestChatEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
