package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/config"
	"github.com/swapnilxi/grab-hack/internal/vector"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// ErrUnknownBackend is returned by Open for an unsupported store.backend.
var ErrUnknownBackend = errors.New("unknown store backend")

// Open builds the configured backend and initializes it.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (vector.Store, error) {
	logger = utils.OrNop(logger)
	dim := cfg.Embedding.Dimension

	var (
		store vector.Store
		err   error
	)
	switch cfg.Store.Backend {
	case BackendMemory:
		var mem *vector.MemoryStore
		mem, err = vector.NewMemoryStore(dim, vector.WithLogger(logger))
		if err == nil {
			store = NewSnapshotStore(mem, cfg.Store.SnapshotPath)
		}
	case BackendSQLite:
		store, err = NewSQLiteStore(cfg.Store.SQLitePath, cfg.Store.TableName, dim, logger)
	case BackendPostgres:
		store, err = NewPostgresStore(ctx, cfg.Store.DatabaseURL, cfg.Store.TableName, dim, cfg.Store.IVFFlatLists, logger)
	default:
		return nil, fmt.Errorf("%w: %s (supported: memory, sqlite, postgres)", ErrUnknownBackend, cfg.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	if err := store.Initialize(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Store.Backend, err)
	}
	logger.Info("vector store ready",
		zap.String("backend", cfg.Store.Backend),
		zap.String("table", cfg.Store.TableName),
		zap.Int("dimension", dim))
	return store, nil
}
