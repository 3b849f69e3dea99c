package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/config"
	"github.com/swapnilxi/grab-hack/internal/models"
)

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	for _, backend := range []string{BackendMemory, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Embedding.Dimension = 2
			cfg.Store.Backend = backend
			cfg.Store.SQLitePath = filepath.Join(dir, backend+".db")
			cfg.Store.SnapshotPath = filepath.Join(dir, backend+".bin")

			store, err := Open(ctx, cfg, zap.NewNop())
			if err != nil {
				t.Fatal(err)
			}
			ok, err := store.Upsert(ctx, &models.DocumentChunk{ID: "a", Content: "x", Embedding: []float32{1, 0}})
			if err != nil || !ok {
				t.Fatalf("Upsert = %v, %v", ok, err)
			}
			if err := store.Close(); err != nil {
				t.Fatal(err)
			}

			reopened, err := Open(ctx, cfg, zap.NewNop())
			if err != nil {
				t.Fatal(err)
			}
			defer reopened.Close()
			if n, _ := reopened.Count(ctx); n != 1 {
				t.Errorf("Count after reopen = %d, want 1", n)
			}
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "faiss"
	if _, err := Open(context.Background(), cfg, nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("got %v", err)
	}
}
