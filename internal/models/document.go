// Package models defines the records shared between the store, the
// orchestrators, and the HTTP boundary.
package models

import "time"

// DocumentChunk is a unit of indexed knowledge. ID is the stable key (usually
// the source path); Embedding always has the store's configured dimension.
type DocumentChunk struct {
	ID        string    `json:"id" db:"identifier"`
	Content   string    `json:"content" db:"content"`
	Embedding []float32 `json:"-" db:"embedding"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SimilarityResult is a read-only projection of a stored chunk returned by a
// similarity query, ordered by ascending Distance.
type SimilarityResult struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	Distance float64 `json:"distance"`
}
