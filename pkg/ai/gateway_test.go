package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

func chatPayload(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
}

func testConfig(endpoint string) config.GatewayConfig {
	return config.GatewayConfig{
		Backend:        "openai",
		Endpoint:       endpoint,
		ModelID:        "test-model",
		TimeoutSeconds: 5,
		MaxRetries:     3,
	}
}

func TestGenerate_ZeroMaxRetriesClampsToOneAttempt(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.MaxRetries = 0
	gw, err := NewGateway(cfg, nil)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	if _, err := gw.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestGenerate_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		json.NewEncoder(w).Encode(chatPayload("hello from model"))
	}))
	defer ts.Close()

	gw, err := NewGateway(testConfig(ts.URL), nil)
	if err != nil {
		t.Fatalf("NewGateway failed: %v", err)
	}

	out, err := gw.Generate(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "hello from model" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGenerate_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(chatPayload("recovered"))
	}))
	defer ts.Close()

	gw, _ := NewGateway(testConfig(ts.URL), nil)
	out, err := gw.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if out != "recovered" {
		t.Fatalf("unexpected output %q", out)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestGenerate_RetryCapThenUnavailable(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	gw, _ := NewGateway(testConfig(ts.URL), nil)
	_, err := gw.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsGatewayError(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected exactly max_retries=3 attempts, got %d", got)
	}
}

func TestGenerate_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	gw, _ := NewGateway(testConfig(ts.URL), nil)
	_, err := gw.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", got)
	}
}

func TestGenerate_DisabledBackendNeverCalled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("disabled backend must not be called")
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.Disabled = true
	gw, _ := NewGateway(cfg, nil)

	_, err := gw.Generate(context.Background(), "prompt")
	if !apperrors.IsGatewayError(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}

func TestGenerateJSON_CorrectiveReprompt(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			json.NewEncoder(w).Encode(chatPayload("sure! here you go: not json at all"))
			return
		}
		json.NewEncoder(w).Encode(chatPayload("```json\n{\"value\": 42}\n```"))
	}))
	defer ts.Close()

	gw, _ := NewGateway(testConfig(ts.URL), nil)

	var out struct {
		Value int `json:"value"`
	}
	if err := gw.GenerateJSON(context.Background(), "give me json", &out); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}
	if out.Value != 42 {
		t.Fatalf("unexpected value %d", out.Value)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected a single corrective re-prompt, got %d calls", got)
	}
}

func TestGenerateJSON_GivesUpWithSchemaError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatPayload("still not json"))
	}))
	defer ts.Close()

	gw, _ := NewGateway(testConfig(ts.URL), nil)

	var out map[string]any
	err := gw.GenerateJSON(context.Background(), "give me json", &out)
	if err == nil {
		t.Fatal("expected schema parse error")
	}
	if !apperrors.IsGatewayError(err) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapped", `Here is the result: {"a":1} hope it helps`, `{"a":1}`},
		{"array", `the items are [1,2,3] as requested`, `[1,2,3]`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace in string", `{"a":"}"}`, `{"a":"}"}`},
		{"nothing", "no structure here", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.in); got != tc.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
