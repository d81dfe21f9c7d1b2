package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Gateway is the single abstraction point over interchangeable generation
// backends. It owns all retry behavior; callers must not retry at a higher
// level.
type Gateway struct {
	backend    Backend
	maxRetries int
	disabled   bool
	logger     *zap.Logger
}

// NewGateway constructs a gateway for the configured backend. Backend
// selection happens here, once at startup, from a closed set of variants.
func NewGateway(cfg config.GatewayConfig, logger *zap.Logger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var backend Backend
	switch cfg.Backend {
	case "openai":
		backend = NewOpenAIBackend(cfg)
	case "ollama":
		backend = NewOllamaBackend(cfg)
	default:
		return nil, apperrors.ErrConfiguration(fmt.Sprintf("unknown generation backend %q", cfg.Backend))
	}

	// MaxRetries counts total attempts; below 1 the retry arithmetic
	// would underflow into unbounded retries
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Gateway{
		backend:    backend,
		maxRetries: maxRetries,
		disabled:   cfg.Disabled,
		logger:     logger,
	}, nil
}

// Generate sends the prompt to the backend and returns the raw text output.
// Network and 5xx failures retry with exponential backoff up to max_retries
// total attempts; 4xx statuses are permanent. A disabled backend is never
// attempted.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	if g.disabled {
		return "", apperrors.ErrBackendDisabled(g.backend.Name())
	}

	var output string
	op := func() error {
		result, err := g.backend.Complete(ctx, prompt)
		if err != nil {
			if se, ok := err.(*statusError); ok && se.Code >= 400 && se.Code < 500 && se.Code != 429 {
				return backoff.Permanent(err)
			}
			g.logger.Warn("backend call failed, may retry",
				zap.String("backend", g.backend.Name()),
				zap.Error(err),
			)
			return err
		}
		output = result
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	// MaxRetries counts total attempts, so n-1 retries after the first
	retrier := backoff.WithMaxRetries(backoff.WithContext(bo, ctx), uint64(g.maxRetries-1))
	if err := backoff.Retry(op, retrier); err != nil {
		g.logger.Error("backend unavailable after retries",
			zap.String("backend", g.backend.Name()),
			zap.Int("max_retries", g.maxRetries),
			zap.Error(err),
		)
		return "", apperrors.ErrBackendUnavailable(g.backend.Name(), err)
	}

	return output, nil
}

// GenerateJSON sends the prompt and parses the response into out. Parse
// failures re-prompt with a corrective instruction up to max_retries times,
// then give up with a schema parse error.
func (g *Gateway) GenerateJSON(ctx context.Context, prompt string, out any) error {
	current := prompt
	var lastErr error

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		raw, err := g.Generate(ctx, current)
		if err != nil {
			return err
		}

		extracted := ExtractJSON(raw)
		if extracted == "" {
			lastErr = fmt.Errorf("no JSON found in backend output")
		} else if err := json.Unmarshal([]byte(extracted), out); err != nil {
			lastErr = err
		} else {
			return nil
		}

		g.logger.Warn("structured output parse failed, re-prompting",
			zap.String("backend", g.backend.Name()),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
		current = prompt + "\n\nYour previous response was not valid JSON (" + lastErr.Error() +
			"). Respond again with ONLY the requested JSON, no commentary and no markdown fences."
	}

	return apperrors.ErrSchemaParse(g.backend.Name(), lastErr)
}

// BackendName reports which backend this gateway was configured with
func (g *Gateway) BackendName() string {
	return g.backend.Name()
}
