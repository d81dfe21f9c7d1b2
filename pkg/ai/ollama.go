package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// OllamaBackend talks to a locally hosted Ollama server via /api/generate
type OllamaBackend struct {
	endpoint    string
	modelID     string
	temperature float64
	maxTokens   int
	client      *http.Client
}

// NewOllamaBackend creates a local generation backend from the gateway config
func NewOllamaBackend(cfg config.GatewayConfig) *OllamaBackend {
	return &OllamaBackend{
		endpoint:    cfg.Endpoint,
		modelID:     cfg.ModelID,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: cfg.Timeout()},
	}
}

// Name implements Backend
func (b *OllamaBackend) Name() string { return "ollama" }

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Complete sends the prompt to the local model and returns its output
func (b *OllamaBackend) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:  b.modelID,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": b.temperature,
			"num_predict": b.maxTokens,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
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

	var or ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", err
	}
	return or.Response, nil
}
