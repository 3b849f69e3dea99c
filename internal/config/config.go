// Package config provides configuration loading and structs for the grabhack server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Providers  ProvidersConfig  `yaml:"providers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Backend      string `yaml:"backend"` // memory, sqlite, postgres
	TableName    string `yaml:"table_name"`
	SQLitePath   string `yaml:"sqlite_path"`
	DatabaseURL  string `yaml:"database_url"`
	IVFFlatLists int    `yaml:"ivfflat_lists"`
	// SnapshotPath is where the memory backend persists its vectors between runs.
	SnapshotPath string `yaml:"snapshot_path"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"` // bedrock, openai, mock
	Model         string `yaml:"model"`
	Dimension     int    `yaml:"dimension"`
	MaxInputChars int    `yaml:"max_input_chars"`
	CacheSize     int    `yaml:"cache_size"`
}

// GenerationConfig holds generative model settings.
type GenerationConfig struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	AnswerTemperature float64 `yaml:"answer_temperature"`
	AnswerMaxTokens   int     `yaml:"answer_max_tokens"`
}

// RetrievalConfig bounds how much context a question pulls from the store.
type RetrievalConfig struct {
	SimilarityLimit int `yaml:"similarity_limit"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// IngestConfig holds corpus ingestion settings.
type IngestConfig struct {
	Root            string   `yaml:"root"`
	Extensions      []string `yaml:"extensions"`
	Workers         int      `yaml:"workers"`
	MaxContentChars int      `yaml:"max_content_chars"`
	Watch           bool     `yaml:"watch"`
}

// ProvidersConfig holds credentials and limits for the model providers.
type ProvidersConfig struct {
	Bedrock BedrockConfig `yaml:"bedrock"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
}

// BedrockConfig configures the AWS Bedrock runtime client. Credentials come
// from the default AWS chain (env, shared config, instance role).
type BedrockConfig struct {
	Region            string  `yaml:"region"`
	Profile           string  `yaml:"profile"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OpenAIConfig configures an OpenAI-compatible HTTP endpoint.
type OpenAIConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load reads and parses the config file at path, applies defaults, and expands paths.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Store.SQLitePath = expandPath(cfg.Store.SQLitePath, configDir)
	cfg.Store.SnapshotPath = expandPath(cfg.Store.SnapshotPath, configDir)
	cfg.Ingest.Root = expandPath(cfg.Ingest.Root, configDir)

	return &cfg, nil
}

// Default returns a config with every default applied, for runs without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("store.database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %s (supported: memory, sqlite, postgres)", c.Store.Backend)
	}
	if !tableNameRe.MatchString(c.Store.TableName) {
		return fmt.Errorf("invalid store.table_name: %q", c.Store.TableName)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	if c.Retrieval.SimilarityLimit <= 0 {
		return fmt.Errorf("retrieval.similarity_limit must be positive")
	}
	for _, p := range []struct{ field, name string }{
		{"embedding.provider", c.Embedding.Provider},
		{"generation.provider", c.Generation.Provider},
	} {
		switch p.name {
		case "bedrock", "openai", "mock":
		default:
			return fmt.Errorf("unknown %s: %s (supported: bedrock, openai, mock)", p.field, p.name)
		}
	}
	return nil
}

// expandPath converts a path to absolute. "~/" is relative to the home directory;
// other relative paths are relative to configDir.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
