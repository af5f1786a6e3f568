package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/weaver/internal/config"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(w http.ResponseWriter, content string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
}

func TestHTTPClient_Chat(t *testing.T) {
	var got ChatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply(w, "pong")
	}))
	defer server.Close()

	temp := 0.3
	client := NewHTTPClient(config.Capability{
		Provider:  config.ProviderLiteLLM,
		Model:     "openai/gpt-4o-mini",
		BaseURL:   server.URL,
		APIKeyEnv: "TEST_KEY",
		Params:    config.Parameters{Temperature: &temp},
	}, func(k string) string {
		if k == "TEST_KEY" {
			return "secret"
		}
		return ""
	})

	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages:    []Message{{Role: "user", Content: "ping"}},
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "openai/gpt-4o-mini", got.Model)
	assert.Equal(t, "Bearer secret", auth)
}

func TestHTTPClient_AuthenticationIsFatal(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))
		client := NewHTTPClient(config.Capability{Provider: config.ProviderOpenAI, Model: "m", BaseURL: server.URL}, nil)

		_, err := client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
		assert.ErrorIs(t, err, domain.ErrAuthentication)
		assert.True(t, domain.IsFatal(domain.NewUpstreamError("task", err)))
		server.Close()
	}
}

func TestHTTPClient_ServerErrorIsNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()
	client := NewHTTPClient(config.Capability{Provider: config.ProviderLMStudio, Model: "m", BaseURL: server.URL + "/v1/"}, nil)

	_, err := client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, domain.IsFatal(err))
}

func TestNormalizeBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:1234/v1", normalizeBaseURL("localhost:1234"))
	assert.Equal(t, "https://api.openai.com/v1", normalizeBaseURL("https://api.openai.com/v1/"))
}
