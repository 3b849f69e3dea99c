package storage

import (
	"context"
	"fmt"

	"github.com/swapnilxi/grab-hack/internal/config"
	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/vector"
)

// Status reports the chunk count and configuration of store.
func Status(ctx context.Context, store vector.Store, cfg *config.Config) (models.StatusResponse, error) {
	chunks, err := store.Count(ctx)
	if err != nil {
		return models.StatusResponse{}, fmt.Errorf("count chunks: %w", err)
	}
	st := models.StatusResponse{
		Chunks:          chunks,
		Backend:         cfg.Store.Backend,
		TableName:       cfg.Store.TableName,
		Dimension:       cfg.Embedding.Dimension,
		EmbeddingModel:  cfg.Embedding.Model,
		GenerationModel: cfg.Generation.Model,
	}
	if n, err := StoreDiskUsage(cfg.Store); err == nil {
		st.DiskUsageBytes = n
	}
	return st, nil
}
