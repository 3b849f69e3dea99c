package bedrock

import (
	"github.com/swapnilxi/grab-hack/internal/ai"
)

const (
	DefaultRegion          = "us-east-1"
	DefaultEmbeddingModel  = "amazon.titan-embed-text-v2:0"
	DefaultGenerationModel = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	// AnthropicVersion is the messages API version Bedrock expects for Claude models.
	AnthropicVersion = "bedrock-2023-05-31"
)

// Config configures the Bedrock runtime adapter. Credentials are resolved by
// the AWS default chain; Profile selects a shared-config profile.
type Config struct {
	Region            string  `json:"region"`
	Profile           string  `json:"profile,omitempty"`
	EmbeddingModel    string  `json:"embedding_model"`
	GenerationModel   string  `json:"generation_model"`
	Dimension         int     `json:"dimension"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

func DefaultConfig() *Config {
	return &Config{
		Region:          DefaultRegion,
		EmbeddingModel:  DefaultEmbeddingModel,
		GenerationModel: DefaultGenerationModel,
		Dimension:       1024,
	}
}

func (c *Config) Validate() error {
	if c.Region == "" {
		return ai.NewConfigurationError(providerName, "region", "region is required")
	}
	if c.EmbeddingModel == "" && c.GenerationModel == "" {
		return ai.NewConfigurationError(providerName, "model", "an embedding or generation model is required")
	}
	if c.Dimension < 0 {
		return ai.NewConfigurationError(providerName, "dimension", "dimension cannot be negative")
	}
	return nil
}
