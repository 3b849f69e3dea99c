package embedding

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// DefaultMaxInputChars bounds the text submitted to the provider.
const DefaultMaxInputChars = 2000

// Client wraps an Embedder. It never returns a vector whose length differs
// from the configured dimension: failures degrade to an empty vector.
type Client struct {
	embedder      Embedder
	dimension     int
	maxInputChars int
	cache         *Cache
	logger        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMaxInputChars sets the rune bound applied before submission.
func WithMaxInputChars(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxInputChars = n
		}
	}
}

// WithCacheSize enables an LRU cache of successful embeddings. Zero disables it.
func WithCacheSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.cache = NewCache(n)
		} else {
			c.cache = nil
		}
	}
}

// NewClient creates a client expecting vectors of the given dimension.
func NewClient(embedder Embedder, dimension int, opts ...Option) *Client {
	c := &Client{
		embedder:      embedder,
		dimension:     dimension,
		maxInputChars: DefaultMaxInputChars,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = utils.OrNop(c.logger)
	return c
}

// CacheStats reports the embedding cache counters; zero when caching is off.
func (c *Client) CacheStats() CacheStats {
	if c.cache == nil {
		return CacheStats{}
	}
	return c.cache.Stats()
}

// Dimension returns the vector length this client guarantees.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns the embedding of text, or nil when the text is blank or the
// provider fails or returns a vector of the wrong length.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	input := utils.TruncateRunes(text, c.maxInputChars)

	if c.cache != nil {
		if v, ok := c.cache.Get(input); ok {
			return v
		}
	}

	vec, err := c.embedder.Embed(ctx, input)
	if err != nil {
		c.logger.Warn("embedding request failed",
			zap.String("provider", c.embedder.Name()),
			zap.Int("input_runes", utils.RuneCount(input)),
			zap.Error(err))
		return nil
	}
	if len(vec) != c.dimension {
		c.logger.Warn("embedding dimension mismatch",
			zap.String("provider", c.embedder.Name()),
			zap.Int("expected", c.dimension),
			zap.Int("got", len(vec)))
		return nil
	}

	if c.cache != nil {
		c.cache.Put(input, vec)
	}
	return vec
}
