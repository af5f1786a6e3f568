// Package llm adapts OpenAI-compatible chat-completion endpoints to the
// orchestrator and task-model ports.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weaver/internal/config"
	"github.com/aretw0/weaver/pkg/domain"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Content      string
	FinishReason string
}

// Client sends one chat completion.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

var defaultBaseURLs = map[config.Provider]string{
	config.ProviderOpenAI:   "https://api.openai.com/v1",
	config.ProviderLiteLLM:  "http://localhost:4000/v1",
	config.ProviderLMStudio: "http://localhost:1234/v1",
}

var defaultKeyEnv = map[config.Provider]string{
	config.ProviderOpenAI:  "OPENAI_API_KEY",
	config.ProviderLiteLLM: "LITELLM_MASTER_KEY",
}

// HTTPClient speaks the OpenAI chat-completions protocol shared by openai, litellm and lmstudio.
type HTTPClient struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient builds a client for one capability.
func NewHTTPClient(c config.Capability, getenv func(string) string) *HTTPClient {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURLs[c.Provider]
	}
	keyEnv := c.APIKeyEnv
	if keyEnv == "" {
		keyEnv = defaultKeyEnv[c.Provider]
	}
	var apiKey string
	if keyEnv != "" && getenv != nil {
		apiKey = getenv(keyEnv)
	}
	timeout := c.Params.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPClient{
		baseURL: normalizeBaseURL(baseURL),
		model:   c.Model,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        16,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (c *HTTPClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if len(req.Messages) == 0 {
		return ChatResponse{}, fmt.Errorf("llm chat requires at least one message")
	}
	if req.Model == "" {
		req.Model = c.model
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(request)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ChatResponse{}, fmt.Errorf("%w: status %s", domain.ErrAuthentication, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ChatResponse{}, fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var decoded chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ChatResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("response missing choices")
	}
	content := decoded.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return ChatResponse{}, fmt.Errorf("response empty")
	}
	return ChatResponse{
		Content:      content,
		FinishReason: strings.TrimSpace(decoded.Choices[0].FinishReason),
	}, nil
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

func normalizeBaseURL(baseURL string) string {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return trimmed
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}
