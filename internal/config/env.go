package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat env file: %w", err)
		}
		existing = append(existing, p)
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with values from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("GRABHACK_PROVIDER"); v != "" {
		// Models still at the old provider's default follow the switch.
		if cfg.Embedding.Model == defaultEmbeddingModel(cfg.Embedding.Provider) {
			cfg.Embedding.Model = defaultEmbeddingModel(v)
		}
		if cfg.Generation.Model == defaultGenerationModel(cfg.Generation.Provider) {
			cfg.Generation.Model = defaultGenerationModel(v)
		}
		cfg.Embedding.Provider = v
		cfg.Generation.Provider = v
	}
	if v := os.Getenv("GRABHACK_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Providers.Bedrock.Region = v
	}
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		cfg.Providers.Bedrock.Profile = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Providers.OpenAI.BaseURL = v
	}
}
