package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/ai/providers/bedrock"
	"github.com/swapnilxi/grab-hack/internal/ai/providers/mock"
	"github.com/swapnilxi/grab-hack/internal/ai/providers/openai"
	"github.com/swapnilxi/grab-hack/internal/cli"
	"github.com/swapnilxi/grab-hack/internal/config"
	"github.com/swapnilxi/grab-hack/internal/decision"
	"github.com/swapnilxi/grab-hack/internal/embedding"
	"github.com/swapnilxi/grab-hack/internal/generation"
	"github.com/swapnilxi/grab-hack/internal/ingest"
	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/qa"
	"github.com/swapnilxi/grab-hack/internal/storage"
	"github.com/swapnilxi/grab-hack/internal/vector"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

const configFileName = "config.yaml"

// findConfig returns the first config file present in the working directory
// or ~/.config/grabhack, or "" when there is none.
func findConfig() string {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, configFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "grabhack", configFileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadConfig loads path, or the first config findConfig locates, or the
// defaults. .env and environment overrides are applied before validation.
// Returns the config and the path actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		path = findConfig()
	}
	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}
	config.ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

// app holds the services one command run needs. Store and models are opened
// on demand so commands that need neither start without credentials.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	format cli.OutputFormat

	store     vector.Store
	embedder  *embedding.Client
	generator *generation.Client
}

func (o *options) newApp() (*app, error) {
	format, err := cli.ParseFormat(o.output)
	if err != nil {
		return nil, err
	}
	cfg, path, err := loadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debug := cfg.Debug || o.debug
	logger, err := utils.NewLogger(debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", path), zap.Bool("debug", debug))
	return &app{cfg: cfg, logger: logger, format: format}, nil
}

func (a *app) open(ctx context.Context) error {
	if err := a.openModels(ctx); err != nil {
		return err
	}
	return a.openStore(ctx)
}

func (a *app) openStore(ctx context.Context) error {
	store, err := storage.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

func (a *app) openModels(ctx context.Context) error {
	emb, completer, err := buildProviders(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize model providers: %w", err)
	}
	a.embedder = embedding.NewClient(emb, a.cfg.Embedding.Dimension,
		embedding.WithLogger(a.logger),
		embedding.WithMaxInputChars(a.cfg.Embedding.MaxInputChars),
		embedding.WithCacheSize(a.cfg.Embedding.CacheSize))
	a.generator = generation.NewClient(completer,
		generation.WithLogger(a.logger),
		generation.WithModel(a.cfg.Generation.Model))
	return nil
}

func (a *app) answerer() *qa.Answerer {
	return qa.NewAnswerer(a.embedder, a.store, a.generator,
		qa.WithLogger(a.logger),
		qa.WithSimilarityLimit(a.cfg.Retrieval.SimilarityLimit),
		qa.WithMaxContextChars(a.cfg.Retrieval.MaxContextChars),
		qa.WithGenerationOptions(generation.AnswerOptions(a.cfg.Generation.AnswerTemperature, a.cfg.Generation.AnswerMaxTokens)))
}

func (a *app) ingestor(opts ...ingest.Option) *ingest.Ingestor {
	base := []ingest.Option{
		ingest.WithLogger(a.logger),
		ingest.WithWorkers(a.cfg.Ingest.Workers),
		ingest.WithMaxContentChars(a.cfg.Ingest.MaxContentChars),
	}
	return ingest.NewIngestor(a.embedder, a.store, append(base, opts...)...)
}

func (a *app) decider() *decision.Decider {
	return decision.NewDecider(a.generator, decision.WithLogger(a.logger))
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// modelProvider is implemented by every provider package.
type modelProvider interface {
	embedding.Embedder
	generation.Completer
}

// buildProviders returns the configured embedding and generation providers,
// sharing one instance when both use the same provider.
func buildProviders(ctx context.Context, cfg *config.Config) (embedding.Embedder, generation.Completer, error) {
	built := make(map[string]modelProvider)
	get := func(name string) (modelProvider, error) {
		if p, ok := built[name]; ok {
			return p, nil
		}
		p, err := newProvider(ctx, name, cfg)
		if err != nil {
			return nil, err
		}
		built[name] = p
		return p, nil
	}
	emb, err := get(cfg.Embedding.Provider)
	if err != nil {
		return nil, nil, err
	}
	gen, err := get(cfg.Generation.Provider)
	if err != nil {
		return nil, nil, err
	}
	return emb, gen, nil
}

func newProvider(ctx context.Context, name string, cfg *config.Config) (modelProvider, error) {
	var embModel, genModel string
	if cfg.Embedding.Provider == name {
		embModel = cfg.Embedding.Model
	}
	if cfg.Generation.Provider == name {
		genModel = cfg.Generation.Model
	}
	switch name {
	case "bedrock":
		b := cfg.Providers.Bedrock
		return bedrock.New(ctx, &bedrock.Config{
			Region:            b.Region,
			Profile:           b.Profile,
			EmbeddingModel:    embModel,
			GenerationModel:   genModel,
			Dimension:         cfg.Embedding.Dimension,
			RequestsPerSecond: b.RequestsPerSecond,
			Burst:             b.Burst,
		})
	case "openai":
		o := cfg.Providers.OpenAI
		return openai.New(&openai.Config{
			APIKey:            o.APIKey,
			BaseURL:           o.BaseURL,
			EmbeddingModel:    embModel,
			GenerationModel:   genModel,
			Dimension:         cfg.Embedding.Dimension,
			Timeout:           time.Duration(o.TimeoutSeconds) * time.Second,
			MaxRetries:        openai.DefaultMaxRetries,
			RequestsPerSecond: o.RequestsPerSecond,
			Burst:             o.Burst,
		})
	case "mock":
		return mock.New(cfg.Embedding.Dimension), nil
	}
	return nil, fmt.Errorf("unknown provider: %s", name)
}

var httpClient = &http.Client{Timeout: 2 * time.Minute}

func postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return doJSON(req, out)
}

func getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return doJSON(req, out)
}

func doJSON(req *http.Request, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr models.ErrorResponse
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
