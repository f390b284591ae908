package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dira-directory/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient(Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-model",
	}, logger.GetGlobal())
	require.NoError(t, err)
	return client
}

func sseBody(chunks ...string) string {
	body := ""
	for _, c := range chunks {
		payload, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{
				{"delta": map[string]string{"content": c}},
			},
		})
		body += "data: " + string(payload) + "\n\n"
	}
	return body + "data: [DONE]\n\n"
}

func TestStreamChatConcatenatesDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(sseBody("Hel", "lo ", "there")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var deltas []string
	full, err := client.StreamChat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
	}, func(chunk string) { deltas = append(deltas, chunk) })
	require.NoError(t, err)

	assert.Equal(t, "Hello there", full)
	assert.Equal(t, []string{"Hel", "lo ", "there"}, deltas)
}

func TestStreamChatSkipsKeepAlives(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte(": keep-alive\n\n"))
		w.Write([]byte(sseBody("ok")))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	full, err := client.StreamChat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", full)
}

func TestStreamChatEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.StreamChat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestStreamChatGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.StreamChat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Contains(t, err.Error(), "429")
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{}, logger.GetGlobal())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
