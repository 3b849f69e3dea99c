package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// MemoryStore is an exact, brute-force vector store held in memory.
// Entries keep insertion order, which breaks distance ties.
type MemoryStore struct {
	dimension int
	entries   []memoryEntry
	byID      map[string]int
	logger    *zap.Logger
	mu        sync.RWMutex
}

type memoryEntry struct {
	id        string
	content   string
	vector    []float32
	createdAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithLogger sets the logger used for rejected upserts.
func WithLogger(l *zap.Logger) MemoryOption {
	return func(m *MemoryStore) { m.logger = l }
}

// NewMemoryStore creates an empty store for vectors of the given dimension.
func NewMemoryStore(dimension int, opts ...MemoryOption) (*MemoryStore, error) {
	if dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	m := &MemoryStore{
		dimension: dimension,
		byID:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = utils.OrNop(m.logger)
	return m, nil
}

// Dimension returns the configured vector length.
func (m *MemoryStore) Dimension() int { return m.dimension }

// Initialize is a no-op; a MemoryStore is ready on creation.
func (m *MemoryStore) Initialize(ctx context.Context) error { return nil }

// Upsert inserts chunk unless its ID is already present.
func (m *MemoryStore) Upsert(ctx context.Context, chunk *models.DocumentChunk) (bool, error) {
	if chunk == nil {
		return false, fmt.Errorf("chunk is required")
	}
	if len(chunk.Embedding) != m.dimension {
		m.logger.Warn("rejecting chunk with wrong embedding dimension",
			zap.String("id", chunk.ID),
			zap.Int("expected", m.dimension),
			zap.Int("got", len(chunk.Embedding)))
		return false, ErrDimensionMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[chunk.ID]; ok {
		return false, nil
	}
	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	vec := make([]float32, m.dimension)
	copy(vec, chunk.Embedding)
	m.byID[chunk.ID] = len(m.entries)
	m.entries = append(m.entries, memoryEntry{
		id:        chunk.ID,
		content:   chunk.Content,
		vector:    vec,
		createdAt: createdAt,
	})
	return true, nil
}

// Query returns up to k stored chunks nearest to embedding.
func (m *MemoryStore) Query(ctx context.Context, embedding []float32, k int) ([]models.SimilarityResult, error) {
	if len(embedding) != m.dimension {
		return nil, fmt.Errorf("query: %w: got %d, expected %d", ErrDimensionMismatch, len(embedding), m.dimension)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.entries) == 0 {
		return nil, nil
	}
	results := make([]models.SimilarityResult, len(m.entries))
	for i, e := range m.entries {
		results[i] = models.SimilarityResult{
			ID:       e.id,
			Content:  e.content,
			Distance: CosineDistance(embedding, e.vector),
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Count returns the number of stored chunks.
func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.entries)), nil
}

// Reset removes every chunk.
func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.byID = make(map[string]int)
	return nil
}

// Close is a no-op for MemoryStore.
func (m *MemoryStore) Close() error { return nil }

// Save writes a snapshot to path, creating the directory if needed. Format:
// dimension (4), n (4), then per chunk: idLen (4), id, contentLen (4),
// content, created_at unix nanos (8), vector (dimension*4).
func (m *MemoryStore) Save(path string) error {
	if path == "" {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	le := binary.LittleEndian
	if err := binary.Write(w, le, uint32(m.dimension)); err != nil {
		return fmt.Errorf("write dimension: %w", err)
	}
	if err := binary.Write(w, le, uint32(len(m.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range m.entries {
		if err := writeBytes(w, []byte(e.id)); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		if err := writeBytes(w, []byte(e.content)); err != nil {
			return fmt.Errorf("write content: %w", err)
		}
		if err := binary.Write(w, le, e.createdAt.UnixNano()); err != nil {
			return fmt.Errorf("write created_at: %w", err)
		}
		if _, err := w.Write(EncodeFloat32s(e.vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return w.Flush()
}

// Load replaces the store contents with the snapshot at path. A missing file
// leaves the store unchanged. The snapshot dimension must match.
func (m *MemoryStore) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	le := binary.LittleEndian
	var dim, n uint32
	if err := binary.Read(r, le, &dim); err != nil {
		return fmt.Errorf("read dimension: %w", err)
	}
	if int(dim) != m.dimension {
		return fmt.Errorf("snapshot: %w: file has %d, store expects %d", ErrDimensionMismatch, dim, m.dimension)
	}
	if err := binary.Read(r, le, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}

	entries := make([]memoryEntry, 0, n)
	byID := make(map[string]int, n)
	buf := make([]byte, m.dimension*4)
	for i := uint32(0); i < n; i++ {
		id, err := readBytes(r)
		if err != nil {
			return fmt.Errorf("read id: %w", err)
		}
		content, err := readBytes(r)
		if err != nil {
			return fmt.Errorf("read content: %w", err)
		}
		var nanos int64
		if err := binary.Read(r, le, &nanos); err != nil {
			return fmt.Errorf("read created_at: %w", err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("read vector: %w", err)
		}
		if _, dup := byID[string(id)]; dup {
			continue
		}
		byID[string(id)] = len(entries)
		entries = append(entries, memoryEntry{
			id:        string(id),
			content:   string(content),
			vector:    DecodeFloat32s(buf),
			createdAt: time.Unix(0, nanos).UTC(),
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = entries
	m.byID = byID
	return nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
