// Package vector defines the vector store contract and an exact in-memory
// implementation ranked by cosine distance.
package vector

import (
	"context"
	"errors"

	"github.com/swapnilxi/grab-hack/internal/models"
)

var (
	// ErrDimensionMismatch is returned when an embedding does not have the
	// store's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrInvalidDimension is returned when a store is created with dimension <= 0.
	ErrInvalidDimension = errors.New("dimension must be positive")
)

// Store persists document chunks and answers nearest-neighbour queries.
//
// Upsert is first-write-wins: an existing ID is skipped and reported as
// (false, nil). Query returns at most k results by ascending cosine distance.
type Store interface {
	Initialize(ctx context.Context) error
	Upsert(ctx context.Context, chunk *models.DocumentChunk) (bool, error)
	Query(ctx context.Context, embedding []float32, k int) ([]models.SimilarityResult, error)
	Count(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
	Close() error
}
