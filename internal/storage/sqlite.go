// Package storage provides the persistent vector store backends and the
// factory that selects one from configuration.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/vector"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore persists chunks in SQLite and answers queries from an
// in-process exact index mirrored from the table.
type SQLiteStore struct {
	db        *sql.DB
	path      string
	table     string
	dimension int
	mirror    *vector.MemoryStore
	logger    *zap.Logger
	writeMu   sync.Mutex
}

// NewSQLiteStore opens or creates a SQLite database at dbPath. Parent
// directories are created if they do not exist. Call Initialize before use.
func NewSQLiteStore(dbPath, table string, dimension int, logger *zap.Logger) (*SQLiteStore, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	logger = utils.OrNop(logger)
	mirror, err := vector.NewMemoryStore(dimension, vector.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	return &SQLiteStore{
		db:        db,
		path:      dbPath,
		table:     table,
		dimension: dimension,
		mirror:    mirror,
		logger:    logger,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Initialize creates the table if needed and loads every stored vector into
// the query mirror. Safe to call on every startup.
func (s *SQLiteStore) Initialize(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		identifier TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at);
	`, s.table)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s.loadMirror(ctx)
}

func (s *SQLiteStore) loadMirror(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.mirror.Reset(ctx); err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT identifier, content, embedding, created_at FROM %s ORDER BY rowid`, s.table))
	if err != nil {
		return fmt.Errorf("failed to load vectors: %w", err)
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		var (
			chunk models.DocumentChunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.Content, &blob, &chunk.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunk.Embedding = vector.DecodeFloat32s(blob)
		if _, err := s.mirror.Upsert(ctx, &chunk); err != nil {
			continue
		}
		loaded++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	s.logger.Debug("loaded vectors from sqlite", zap.String("table", s.table), zap.Int("count", loaded))
	return nil
}

// Upsert inserts chunk unless its identifier already exists.
func (s *SQLiteStore) Upsert(ctx context.Context, chunk *models.DocumentChunk) (bool, error) {
	if chunk == nil {
		return false, fmt.Errorf("chunk is required")
	}
	if len(chunk.Embedding) != s.dimension {
		s.logger.Warn("rejecting chunk with wrong embedding dimension",
			zap.String("id", chunk.ID),
			zap.Int("expected", s.dimension),
			zap.Int("got", len(chunk.Embedding)))
		return false, vector.ErrDimensionMismatch
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now().UTC()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	result, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (identifier, content, embedding, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(identifier) DO NOTHING`, s.table),
		chunk.ID, chunk.Content, vector.EncodeFloat32s(chunk.Embedding), chunk.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert chunk: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := s.mirror.Upsert(ctx, chunk); err != nil {
		return false, err
	}
	return true, nil
}

// Query returns up to k chunks by ascending cosine distance.
func (s *SQLiteStore) Query(ctx context.Context, embedding []float32, k int) ([]models.SimilarityResult, error) {
	return s.mirror.Query(ctx, embedding, k)
}

// Count returns the number of stored chunks.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&count)
	return count, err
}

// Reset deletes every chunk.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return fmt.Errorf("failed to reset table: %w", err)
	}
	return s.mirror.Reset(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
