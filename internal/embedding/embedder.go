// Package embedding turns text into fixed-dimension vectors through a provider,
// with input truncation, caching and degrade-to-empty error handling.
package embedding

import "context"

// Embedder is a provider that maps text to a vector. Implementations live
// under internal/ai/providers.
type Embedder interface {
	Name() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)
}
