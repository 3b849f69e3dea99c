package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/vector"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// DefaultIVFFlatLists is the ivfflat list count used when none is configured.
const DefaultIVFFlatLists = 100

// PostgresStore keeps chunks in a pgvector table with an ivfflat cosine index.
// Results may be approximate until the index is rebuilt on a populated table.
type PostgresStore struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
	lists     int
	logger    *zap.Logger
}

// NewPostgresStore connects a pool to databaseURL. Call Initialize before use.
func NewPostgresStore(ctx context.Context, databaseURL, table string, dimension, lists int, logger *zap.Logger) (*PostgresStore, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}
	if dimension <= 0 {
		return nil, vector.ErrInvalidDimension
	}
	if lists <= 0 {
		lists = DefaultIVFFlatLists
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &PostgresStore{
		pool:      pool,
		table:     table,
		dimension: dimension,
		lists:     lists,
		logger:    utils.OrNop(logger),
	}, nil
}

func (p *PostgresStore) ident() string {
	return pgx.Identifier{p.table}.Sanitize()
}

// Initialize creates the vector extension, the table and the ANN index if
// they do not exist.
func (p *PostgresStore) Initialize(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			identifier TEXT UNIQUE NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, p.ident(), p.dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d)`,
			pgx.Identifier{p.table + "_embedding_idx"}.Sanitize(), p.ident(), p.lists),
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	p.logger.Debug("postgres store ready", zap.String("table", p.table), zap.Int("dimension", p.dimension))
	return nil
}

// Upsert inserts chunk unless its identifier already exists.
func (p *PostgresStore) Upsert(ctx context.Context, chunk *models.DocumentChunk) (bool, error) {
	if chunk == nil {
		return false, fmt.Errorf("chunk is required")
	}
	if len(chunk.Embedding) != p.dimension {
		p.logger.Warn("rejecting chunk with wrong embedding dimension",
			zap.String("id", chunk.ID),
			zap.Int("expected", p.dimension),
			zap.Int("got", len(chunk.Embedding)))
		return false, vector.ErrDimensionMismatch
	}
	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	tag, err := p.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (identifier, content, embedding, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (identifier) DO NOTHING`, p.ident()),
		chunk.ID, chunk.Content, pgvector.NewVector(chunk.Embedding), createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert chunk: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Query returns up to k chunks ordered by the pgvector cosine distance operator.
func (p *PostgresStore) Query(ctx context.Context, embedding []float32, k int) ([]models.SimilarityResult, error) {
	if len(embedding) != p.dimension {
		return nil, fmt.Errorf("query: %w: got %d, expected %d", vector.ErrDimensionMismatch, len(embedding), p.dimension)
	}
	if k <= 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, fmt.Sprintf(
		`SELECT identifier, content, embedding <=> $1 AS distance
		 FROM %s ORDER BY distance, id LIMIT $2`, p.ident()),
		pgvector.NewVector(embedding), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar chunks: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SimilarityResult, error) {
		var r models.SimilarityResult
		err := row.Scan(&r.ID, &r.Content, &r.Distance)
		return r, err
	})
}

// Count returns the number of stored chunks.
func (p *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, p.ident())).Scan(&count)
	return count, err
}

// Reset deletes every chunk.
func (p *PostgresStore) Reset(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, fmt.Sprintf(`TRUNCATE %s`, p.ident())); err != nil {
		return fmt.Errorf("failed to reset table: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
