// Package bedrock adapts the AWS Bedrock runtime (Titan embeddings, Claude
// messages) to the embedding and generation clients.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"golang.org/x/time/rate"

	"github.com/swapnilxi/grab-hack/internal/ai"
)

const providerName = "bedrock"

// defaultMaxTokens applies when a CompletionRequest leaves MaxTokens unset;
// the messages API requires the field.
const defaultMaxTokens = 512

// InvokeModelAPI is the subset of *bedrockruntime.Client used here.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Provider struct {
	config  *Config
	api     InvokeModelAPI
	limiter *rate.Limiter
}

// New loads AWS configuration for cfg.Region (and cfg.Profile) and returns a
// provider backed by a bedrockruntime client.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewWithClient(cfg, bedrockruntime.NewFromConfig(awsCfg))
}

// NewWithClient returns a provider using api for model invocation.
func NewWithClient(cfg *Config, api InvokeModelAPI) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if api == nil {
		return nil, ai.NewConfigurationError(providerName, "client", "bedrock runtime client is required")
	}
	return &Provider{
		config:  cfg,
		api:     api,
		limiter: ai.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

// Dimensions returns the configured embedding dimension.
func (p *Provider) Dimensions() int {
	return p.config.Dimension
}

// Embed calls a Titan text embedding model.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.config.EmbeddingModel == "" {
		return nil, ai.NewConfigurationError(providerName, "embedding_model", "no embedding model configured")
	}
	req := titanEmbedRequest{InputText: text}
	// Only Titan v2 accepts an output size, and only these three.
	if strings.Contains(p.config.EmbeddingModel, "titan-embed-text-v2") {
		switch p.config.Dimension {
		case 256, 512, 1024:
			req.Dimensions = p.config.Dimension
			req.Normalize = true
		}
	}
	var out titanEmbedResponse
	if err := p.invoke(ctx, p.config.EmbeddingModel, req, &out); err != nil {
		return nil, err
	}
	if len(out.Embedding) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeMalformedResponse, "response contained no embedding", providerName)
	}
	return out.Embedding, nil
}

// Complete sends a single user message to a Claude model.
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "completion request is required")
	}
	model := req.Model
	if model == "" {
		model = p.config.GenerationModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	body := claudeRequest{
		AnthropicVersion: AnthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		System:           req.SystemPrompt,
		Messages:         []claudeMessage{{Role: "user", Content: req.Prompt}},
	}
	var out claudeResponse
	if err := p.invoke(ctx, model, body, &out); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, c := range out.Content {
		if c.Type == "text" || c.Type == "" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeMalformedResponse, "response contained no text content", providerName)
	}
	return &ai.CompletionResponse{
		Content:      sb.String(),
		FinishReason: out.StopReason,
		Model:        out.Model,
		Usage: ai.Usage{
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
		},
		RequestID: req.RequestID,
	}, nil
}

func (p *Provider) invoke(ctx context.Context, modelID string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to marshal request", providerName, err)
	}
	if err := ai.Wait(ctx, p.limiter, providerName); err != nil {
		return err
	}
	resp, err := p.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return classify(err)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeMalformedResponse, "failed to decode response", providerName, err)
	}
	return nil
}

// classify maps Bedrock service exceptions onto provider error types.
func classify(err error) error {
	var (
		accessDenied *brtypes.AccessDeniedException
		throttling   *brtypes.ThrottlingException
		quota        *brtypes.ServiceQuotaExceededException
		validation   *brtypes.ValidationException
		notFound     *brtypes.ResourceNotFoundException
		notReady     *brtypes.ModelNotReadyException
		modelTimeout *brtypes.ModelTimeoutException
		unavailable  *brtypes.ServiceUnavailableException
		internal     *brtypes.InternalServerException
	)
	switch {
	case errors.As(err, &accessDenied):
		return ai.NewProviderErrorWithCause(ai.ErrTypeAuthentication, "access denied", providerName, err)
	case errors.As(err, &throttling), errors.As(err, &quota):
		return ai.NewProviderErrorWithCause(ai.ErrTypeRateLimit, "request throttled", providerName, err)
	case errors.As(err, &validation):
		return ai.NewProviderErrorWithCause(ai.ErrTypeValidation, "request rejected", providerName, err)
	case errors.As(err, &notFound), errors.As(err, &notReady):
		return ai.NewProviderErrorWithCause(ai.ErrTypeModelUnavailable, "model unavailable", providerName, err)
	case errors.As(err, &modelTimeout), errors.Is(err, context.DeadlineExceeded):
		return ai.NewProviderErrorWithCause(ai.ErrTypeTimeout, "model timed out", providerName, err)
	case errors.As(err, &unavailable), errors.As(err, &internal):
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "service unavailable", providerName, err)
	default:
		return ai.NewProviderErrorWithCause(ai.ErrTypeProvider, "invoke model failed", providerName, err)
	}
}
