package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Gateway  GatewayConfig
	Pipeline PipelineConfig
}

// GatewayConfig selects and tunes the generation backend. Read once at
// process start; no other component reads external configuration directly.
type GatewayConfig struct {
	Backend        string  `envconfig:"LLM_BACKEND" default:"openai"`
	Endpoint       string  `envconfig:"LLM_ENDPOINT" default:"https://api.groq.com/openai/v1/chat/completions"`
	APIKey         string  `envconfig:"LLM_API_KEY"`
	ModelID        string  `envconfig:"LLM_MODEL" default:"llama-3.1-70b-versatile"`
	Temperature    float64 `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	MaxTokens      int     `envconfig:"LLM_MAX_TOKENS" default:"2000"`
	TimeoutSeconds float64 `envconfig:"LLM_TIMEOUT_SECONDS" default:"30"`
	MaxRetries     int     `envconfig:"LLM_MAX_RETRIES" default:"3"`
	Disabled       bool    `envconfig:"LLM_DISABLED" default:"false"`
}

// PipelineConfig carries the analysis thresholds with their documented
// defaults. Lifted into one struct so no component hides its own constants.
type PipelineConfig struct {
	SummaryLength       string        `envconfig:"SUMMARY_LENGTH" default:"medium"`
	ExtractiveRatio     float64       `envconfig:"EXTRACTIVE_RATIO" default:"0.33"`
	TopicCount          int           `envconfig:"TOPIC_COUNT" default:"5"`
	MinActionConfidence float64       `envconfig:"MIN_ACTION_CONFIDENCE" default:"0.3"`
	SimilarityThreshold float64       `envconfig:"SIMILARITY_THRESHOLD" default:"0.6"`
	StageTimeout        time.Duration `envconfig:"STAGE_TIMEOUT" default:"120s"`
	Language            string        `envconfig:"LANGUAGE" default:"auto"`
}

// Timeout returns the gateway per-call timeout as a duration
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds * float64(time.Second))
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg.Gateway); err != nil {
		return nil, fmt.Errorf("failed to parse gateway config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Pipeline); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Gateway.Backend {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unsupported LLM_BACKEND %q (supported: openai, ollama)", c.Gateway.Backend)
	}
	if c.Gateway.MaxRetries < 1 {
		return fmt.Errorf("LLM_MAX_RETRIES must be at least 1")
	}
	if c.Pipeline.ExtractiveRatio <= 0 || c.Pipeline.ExtractiveRatio > 1 {
		return fmt.Errorf("EXTRACTIVE_RATIO must be in (0, 1]")
	}
	if c.Pipeline.MinActionConfidence < 0 || c.Pipeline.MinActionConfidence > 1 {
		return fmt.Errorf("MIN_ACTION_CONFIDENCE must be in [0, 1]")
	}
	// The orchestrator budget must exceed the gateway's retry worst case or
	// stages get cancelled while the gateway is still within its authority.
	worst := time.Duration(float64(c.Gateway.MaxRetries)*c.Gateway.TimeoutSeconds) * time.Second
	if c.Pipeline.StageTimeout <= worst {
		return fmt.Errorf("STAGE_TIMEOUT (%s) must exceed LLM_MAX_RETRIES x LLM_TIMEOUT_SECONDS (%s)", c.Pipeline.StageTimeout, worst)
	}
	return nil
}
