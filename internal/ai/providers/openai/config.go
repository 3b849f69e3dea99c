package openai

import (
	"fmt"
	"net/url"
	"time"

	"github.com/swapnilxi/grab-hack/internal/ai"
)

const (
	DefaultBaseURL         = "https://api.openai.com"
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultGenerationModel = "gpt-4o-mini"
	DefaultTimeout         = 30 * time.Second
	DefaultMaxRetries      = 3
)

// Config configures an OpenAI-compatible endpoint. Any server speaking the
// /v1/embeddings and /v1/chat/completions routes works (Ollama, vLLM, LM Studio).
type Config struct {
	APIKey            string        `json:"api_key"`
	BaseURL           string        `json:"base_url"`
	EmbeddingModel    string        `json:"embedding_model"`
	GenerationModel   string        `json:"generation_model"`
	Dimension         int           `json:"dimension"`
	Timeout           time.Duration `json:"timeout"`
	MaxRetries        int           `json:"max_retries"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	Burst             int           `json:"burst"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		EmbeddingModel:  DefaultEmbeddingModel,
		GenerationModel: DefaultGenerationModel,
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ai.NewConfigurationError("openai", "api_key", "API key is required")
	}
	if c.BaseURL == "" {
		return ai.NewConfigurationError("openai", "base_url", "base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ai.NewConfigurationError("openai", "base_url", fmt.Sprintf("invalid base URL: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ai.NewConfigurationError("openai", "base_url", "base URL must be http or https")
	}
	if c.EmbeddingModel == "" && c.GenerationModel == "" {
		return ai.NewConfigurationError("openai", "model", "an embedding or generation model is required")
	}
	if c.Timeout <= 0 {
		return ai.NewConfigurationError("openai", "timeout", "timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return ai.NewConfigurationError("openai", "max_retries", "max retries cannot be negative")
	}
	return nil
}
