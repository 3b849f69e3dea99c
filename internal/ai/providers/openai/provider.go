// Package openai adapts OpenAI-compatible HTTP endpoints to the embedding and
// generation clients.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/swapnilxi/grab-hack/internal/ai"
)

const providerName = "openai"

// maxErrorBody bounds how much of an error response is read into the error message.
const maxErrorBody = 4096

type Provider struct {
	config    *Config
	client    *http.Client
	baseURL   *url.URL
	limiter   *rate.Limiter
	retryBase time.Duration
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, ai.NewConfigurationError(providerName, "base_url", fmt.Sprintf("invalid base URL: %v", err))
	}
	return &Provider{
		config:    config,
		client:    &http.Client{Timeout: config.Timeout},
		baseURL:   baseURL,
		limiter:   ai.NewLimiter(config.RequestsPerSecond, config.Burst),
		retryBase: 200 * time.Millisecond,
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

// Dimensions returns the configured embedding dimension (0 when unset).
func (p *Provider) Dimensions() int {
	return p.config.Dimension
}

// Embed returns the embedding for text from /v1/embeddings.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.config.EmbeddingModel == "" {
		return nil, ai.NewConfigurationError(providerName, "embedding_model", "no embedding model configured")
	}
	req := embeddingRequest{Model: p.config.EmbeddingModel, Input: text}
	if p.config.Dimension > 0 && strings.HasPrefix(p.config.EmbeddingModel, "text-embedding-3") {
		req.Dimensions = p.config.Dimension
	}
	var out embeddingResponse
	if err := p.post(ctx, "/v1/embeddings", req, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeMalformedResponse, "response contained no embedding", providerName)
	}
	return out.Data[0].Embedding, nil
}

// Complete sends a single-turn chat completion.
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "completion request is required")
	}
	model := req.Model
	if model == "" {
		model = p.config.GenerationModel
	}
	chatReq := chatRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		User:        req.RequestID,
	}
	if req.SystemPrompt != "" {
		chatReq.Messages = append(chatReq.Messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	chatReq.Messages = append(chatReq.Messages, chatMessage{Role: "user", Content: req.Prompt})

	var out chatResponse
	if err := p.post(ctx, "/v1/chat/completions", chatReq, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeMalformedResponse, "response contained no choices", providerName)
	}
	choice := out.Choices[0]
	return &ai.CompletionResponse{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Model:        out.Model,
		Usage: ai.Usage{
			InputTokens:  out.Usage.PromptTokens,
			OutputTokens: out.Usage.CompletionTokens,
		},
		RequestID: req.RequestID,
	}, nil
}

func (p *Provider) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to marshal request", providerName, err)
	}
	endpoint := p.baseURL.JoinPath(path).String()

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, p.retryDelay(attempt-1, lastErr)); err != nil {
				return ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "retry wait cancelled", providerName, err)
			}
		}
		if err := ai.Wait(ctx, p.limiter, providerName); err != nil {
			return err
		}
		lastErr = p.do(ctx, endpoint, body, out)
		if lastErr == nil || !ai.IsRetryableError(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (p *Provider) do(ctx context.Context, endpoint string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create request", providerName, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "request timed out", providerName, err)
		}
		if ctx.Err() != nil {
			return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "request cancelled", providerName, err)
		}
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed", providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return p.handleErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeMalformedResponse, "failed to decode response", providerName, err)
	}
	return nil
}

func (p *Provider) handleErrorResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := fmt.Sprintf("request failed with status %d", resp.StatusCode)
	var er errorResponse
	if json.Unmarshal(data, &er) == nil && er.Error.Message != "" {
		msg = er.Error.Message
	}
	pe := ai.NewStatusError(resp.StatusCode, msg, providerName)
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			pe.RetryAfter = secs
		}
	}
	return pe
}

// retryDelay is exponential from retryBase, capped at 5s. A server-provided
// Retry-After wins when present.
func (p *Provider) retryDelay(attempt int, lastErr error) time.Duration {
	var pe *ai.ProviderError
	if errors.As(lastErr, &pe) && pe.RetryAfter > 0 {
		return time.Duration(pe.RetryAfter) * time.Second
	}
	d := p.retryBase << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
