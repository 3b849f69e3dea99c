package decision

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/generation"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// Generator returns model text or generation.FailureSentinel.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) string
}

// Decider asks the model for a decision and validates the reply.
type Decider struct {
	generator Generator
	logger    *zap.Logger
}

// DeciderOption configures a Decider.
type DeciderOption func(*Decider)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) DeciderOption {
	return func(d *Decider) { d.logger = l }
}

// NewDecider creates a Decider.
func NewDecider(generator Generator, opts ...DeciderOption) *Decider {
	d := &Decider{generator: generator}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = utils.OrNop(d.logger)
	return d
}

// Decide analyzes summary and payload in domain d.
func (dc *Decider) Decide(ctx context.Context, d Domain, summary string, payload map[string]any) Decision {
	req := BuildRequest(d, summary, payload)
	req.RequestID = uuid.NewString()

	raw := dc.generator.Generate(ctx, req)
	if raw == generation.FailureSentinel {
		dc.logger.Warn("decision model unavailable",
			zap.String("domain", d.Name),
			zap.String("request_id", req.RequestID))
		return failure(d, ReasonModelFailed, raw)
	}

	dec := Validate(raw, d)
	if !dec.Valid {
		dc.logger.Warn("model reply rejected",
			zap.String("domain", d.Name),
			zap.String("request_id", req.RequestID),
			zap.String("reason", dec.Reason),
			zap.String("raw", utils.Truncate(raw, 200)))
	} else {
		dc.logger.Debug("decision",
			zap.String("domain", d.Name),
			zap.String("tag", dec.Tag),
			zap.Bool("repaired", dec.Repaired))
	}
	return dec
}
