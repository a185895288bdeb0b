package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageNoKey(t *testing.T) {
	client := NewClient("http://unused", "")
	reply := client.SendMessage(context.Background(), "hello", nil)
	assert.Equal(t, SentinelNoKey, reply)
}

func TestSendMessageSuccess(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": "Welcome to the valley."}},
				},
			}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	history := []Turn{{Role: "user", Parts: []Part{{Text: "hi"}}}, {Role: "model", Parts: []Part{{Text: "hello"}}}}
	reply := client.SendMessage(context.Background(), "tell me more", history)

	assert.Equal(t, "Welcome to the valley.", reply)
	require.Len(t, captured.Contents, 3)
	assert.Equal(t, "model", captured.Contents[1].Role)
	assert.Equal(t, "tell me more", captured.Contents[2].Parts[0].Text)
	assert.Equal(t, 0.7, captured.GenerationConfig.Temperature)
	assert.Equal(t, 1024, captured.GenerationConfig.MaxOutputTokens)
}

func TestSendMessageHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	reply := client.SendMessage(context.Background(), "hello", nil)
	assert.Equal(t, SentinelBadStatus, reply)
}

func TestSendMessageEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	reply := client.SendMessage(context.Background(), "hello", nil)
	assert.Equal(t, SentinelEmptyReply, reply)
}

func TestSendMessageUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "test-key")
	reply := client.SendMessage(context.Background(), "hello", nil)
	assert.Equal(t, SentinelTransport, reply)
}
