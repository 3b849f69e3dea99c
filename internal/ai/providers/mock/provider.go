// Package mock is a deterministic, in-process provider for offline runs and
// tests. Embeddings derive from a text hash; completions come from a reply queue.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/swapnilxi/grab-hack/internal/ai"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// DefaultReply is returned by Complete when no replies are queued.
const DefaultReply = "mock response"

type Provider struct {
	dimensions int

	mu          sync.Mutex
	vectors     map[string][]float32
	replies     []string
	embedErr    error
	completeErr error
	embedCalls  int
	requests    []*ai.CompletionRequest
}

// New returns a provider producing embeddings of the given dimension.
func New(dimensions int) *Provider {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &Provider{dimensions: dimensions, vectors: make(map[string][]float32)}
}

func (p *Provider) Name() string { return "mock" }

// Dimensions returns the embedding dimension.
func (p *Provider) Dimensions() int { return p.dimensions }

// SetVector pins the embedding returned for text. The vector is returned as
// given, so a wrong-length vector can be used to exercise dimension checks.
func (p *Provider) SetVector(text string, vec []float32) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vectors[text] = append([]float32(nil), vec...)
	return p
}

// WithReplies queues completion replies. The last reply repeats once the
// queue is drained.
func (p *Provider) WithReplies(replies ...string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, replies...)
	return p
}

// FailEmbed makes every Embed call return err.
func (p *Provider) FailEmbed(err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedErr = err
	return p
}

// FailComplete makes every Complete call return err.
func (p *Provider) FailComplete(err error) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completeErr = err
	return p
}

// Embed returns the pinned vector for text, or a deterministic unit vector
// derived from its hash.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedCalls++
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	if err := ctx.Err(); err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "context done", "mock", err)
	}
	if v, ok := p.vectors[text]; ok {
		return append([]float32(nil), v...), nil
	}
	h := hashString(text)
	emb := make([]float32, p.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(float64(h)*float64(i+1))*0.1 + 0.01)
	}
	return utils.UnitVector(emb), nil
}

// Complete records req and returns the next queued reply.
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if req == nil {
		return nil, ai.NewValidationError("request", "completion request is required")
	}
	cp := *req
	p.requests = append(p.requests, &cp)
	if p.completeErr != nil {
		return nil, p.completeErr
	}
	reply := DefaultReply
	if len(p.replies) > 0 {
		reply = p.replies[0]
		if len(p.replies) > 1 {
			p.replies = p.replies[1:]
		}
	}
	return &ai.CompletionResponse{Content: reply, Model: "mock", FinishReason: "stop", RequestID: req.RequestID}, nil
}

// EmbedCalls returns how many times Embed was called.
func (p *Provider) EmbedCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.embedCalls
}

// Requests returns copies of every completion request received.
func (p *Provider) Requests() []*ai.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*ai.CompletionRequest(nil), p.requests...)
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
