package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// OpenAIBackend is a minimal client for OpenAI-compatible chat completion
// endpoints (Groq, OpenAI, vLLM and friends)
type OpenAIBackend struct {
	apiKey      string
	endpoint    string
	modelID     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewOpenAIBackend creates a chat-completions backend from the gateway config
func NewOpenAIBackend(cfg config.GatewayConfig) *OpenAIBackend {
	return &OpenAIBackend{
		apiKey:      cfg.APIKey,
		endpoint:    cfg.Endpoint,
		modelID:     cfg.ModelID,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: cfg.Timeout()},
	}
}

// Name implements Backend
func (b *OpenAIBackend) Name() string { return "openai" }

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt to the configured endpoint and returns the
// assistant content
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatRequest{
		Model:       b.modelID,
		Messages:    []map[string]string{{"role": "user", "content": prompt}},
		Temperature: b.temperature,
		MaxTokens:   b.maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &statusError{Code: resp.StatusCode, Backend: b.Name()}
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s backend", b.Name())
	}
	return cr.Choices[0].Message.Content, nil
}

// statusError carries a non-2xx backend status so the gateway can decide
// whether the failure is retryable
type statusError struct {
	Code    int
	Backend string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s backend returned status %d", e.Backend, e.Code)
}
