// Package generation sends prompts to a generative model and degrades every
// failure to a fixed sentinel string.
package generation

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/ai"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// FailureSentinel is returned in place of model output when the call fails.
const FailureSentinel = "The model failed to respond."

// Completer is implemented by the model provider adapters.
type Completer interface {
	Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error)
}

// Options bound a single generation call.
type Options struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// AnswerOptions is the free-form preset used for question answering.
func AnswerOptions(temperature float64, maxTokens int) Options {
	return Options{MaxTokens: maxTokens, Temperature: temperature}
}

// DecisionOptions is the deterministic preset used for structured decisions.
func DecisionOptions(maxTokens int) Options {
	return Options{MaxTokens: maxTokens, Temperature: 0, TopP: 1}
}

// Request is one prompt to generate from.
type Request struct {
	System    string
	Prompt    string
	Options   Options
	RequestID string
}

// Client wraps a Completer.
type Client struct {
	completer Completer
	model     string
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithModel overrides the provider's configured model on every request.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient creates a generation client.
func NewClient(completer Completer, opts ...Option) *Client {
	c := &Client{completer: completer}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = utils.OrNop(c.logger)
	return c
}

// Generate returns the model's text for req, or FailureSentinel if the call
// fails or yields no text.
func (c *Client) Generate(ctx context.Context, req Request) string {
	resp, err := c.completer.Complete(ctx, &ai.CompletionRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.System,
		MaxTokens:    req.Options.MaxTokens,
		Temperature:  req.Options.Temperature,
		TopP:         req.Options.TopP,
		Model:        c.model,
		RequestID:    req.RequestID,
	})
	if err != nil {
		c.logger.Error("generation failed",
			zap.String("request_id", req.RequestID),
			zap.Bool("retryable", ai.IsRetryableError(err)),
			zap.Error(err))
		return FailureSentinel
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		c.logger.Warn("generation returned no text", zap.String("request_id", req.RequestID))
		return FailureSentinel
	}
	c.logger.Debug("generation complete",
		zap.String("request_id", req.RequestID),
		zap.String("model", resp.Model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))
	return resp.Content
}
