// Package ingest embeds a corpus of (identifier, text) documents and writes
// them to the vector store with bounded parallelism.
package ingest

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/vector"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

const (
	// DefaultWorkers is the number of documents embedded concurrently.
	DefaultWorkers = 4
	// DefaultMaxContentChars bounds stored content in runes.
	DefaultMaxContentChars = 2000
)

// Document is one source item. ID is its stable key, usually the source path.
type Document struct {
	ID   string
	Text string
}

// Stats counts what happened to every document seen.
type Stats struct {
	Seen       int
	Ingested   int
	Duplicates int
	Skipped    int
	Failed     int
}

// Outcome is the result of ingesting one document.
type Outcome int

const (
	OutcomeIngested Outcome = iota
	OutcomeDuplicate
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIngested:
		return "ingested"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Response is the wire form of the stats.
func (s Stats) Response() models.IngestResponse {
	return models.IngestResponse{
		Seen:       s.Seen,
		Ingested:   s.Ingested,
		Duplicates: s.Duplicates,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
	}
}

func (s *Stats) add(o Outcome) {
	switch o {
	case OutcomeIngested:
		s.Ingested++
	case OutcomeDuplicate:
		s.Duplicates++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Embedder returns an embedding, or an empty vector on failure.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Ingestor embeds documents and upserts them into a store.
type Ingestor struct {
	embedder        Embedder
	store           vector.Store
	workers         int
	maxContentChars int
	logger          *zap.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Ingestor) { i.logger = l }
}

// WithWorkers sets how many documents are processed concurrently.
func WithWorkers(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithMaxContentChars bounds the stored content of each document.
func WithMaxContentChars(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.maxContentChars = n
		}
	}
}

// NewIngestor creates an Ingestor.
func NewIngestor(embedder Embedder, store vector.Store, opts ...Option) *Ingestor {
	i := &Ingestor{
		embedder:        embedder,
		store:           store,
		workers:         DefaultWorkers,
		maxContentChars: DefaultMaxContentChars,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = utils.OrNop(i.logger)
	return i
}

// Ingest processes every document from source. Failures are counted per
// document and never abort the batch. Documents sharing an ID are stored in
// source order, so the first one wins. Cancelling ctx stops scheduling new
// documents; documents already in flight finish.
func (i *Ingestor) Ingest(ctx context.Context, source iter.Seq[Document]) Stats {
	start := time.Now()
	var (
		mu    sync.Mutex
		stats Stats
		g     errgroup.Group
	)
	g.SetLimit(i.workers)
	// last holds the completion channel of the most recent job per ID.
	last := make(map[string]chan struct{})

	for doc := range source {
		if ctx.Err() != nil {
			break
		}
		stats.Seen++
		prev := last[doc.ID]
		done := make(chan struct{})
		last[doc.ID] = done
		g.Go(func() error {
			defer close(done)
			if prev != nil {
				<-prev
			}
			o := i.IngestOne(ctx, doc)
			mu.Lock()
			stats.add(o)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	i.logger.Info("ingestion finished",
		zap.Int("seen", stats.Seen),
		zap.Int("ingested", stats.Ingested),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Duration("elapsed", time.Since(start)))
	return stats
}

// IngestOne embeds and stores a single document.
func (i *Ingestor) IngestOne(ctx context.Context, doc Document) Outcome {
	content := strings.TrimSpace(doc.Text)
	if strings.TrimSpace(doc.ID) == "" || content == "" {
		i.logger.Debug("skipping empty document", zap.String("id", doc.ID))
		return OutcomeSkipped
	}
	content = utils.TruncateRunes(content, i.maxContentChars)

	emb := i.embedder.Embed(ctx, content)
	if len(emb) == 0 {
		i.logger.Warn("no embedding for document", zap.String("id", doc.ID))
		return OutcomeFailed
	}

	inserted, err := i.store.Upsert(ctx, &models.DocumentChunk{
		ID:        doc.ID,
		Content:   content,
		Embedding: emb,
		CreatedAt: time.Now().UTC(),
	})
	switch {
	case errors.Is(err, vector.ErrDimensionMismatch):
		return OutcomeFailed
	case err != nil:
		i.logger.Error("failed to store document", zap.String("id", doc.ID), zap.Error(err))
		return OutcomeFailed
	case !inserted:
		i.logger.Debug("document already stored", zap.String("id", doc.ID))
		return OutcomeDuplicate
	}
	i.logger.Debug("document ingested", zap.String("id", doc.ID))
	return OutcomeIngested
}

// Slice adapts a slice of documents to a source.
func Slice(docs []Document) iter.Seq[Document] {
	return func(yield func(Document) bool) {
		for _, d := range docs {
			if !yield(d) {
				return
			}
		}
	}
}
