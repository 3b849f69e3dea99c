package qa

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/generation"
	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/vector"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// State is a step of answering a question. The last state reached is
// reported with the answer.
type State string

const (
	StateEmbedding       State = "embedding"
	StateRetrieving      State = "retrieving"
	StateAssembling      State = "assembling"
	StateGenerating      State = "generating"
	StateDone            State = "done"
	StateNoEmbedding     State = "no_embedding"
	StateNoResults       State = "no_results"
	StateRetrievalFailed State = "retrieval_failed"
)

// User-facing messages for the terminal states that skip generation.
const (
	MsgNoEmbedding     = "Could not generate embedding for your question."
	MsgNoResults       = "No relevant information found in the database."
	MsgRetrievalFailed = "Could not search the knowledge base."
)

// DefaultSimilarityLimit is the number of fragments retrieved per question.
const DefaultSimilarityLimit = 15

// Embedder returns an embedding or an empty vector on failure.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Generator returns model text or generation.FailureSentinel.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) string
}

// Answer is the result of one question.
type Answer struct {
	Text    string
	State   State
	Sources []string
}

// Answerer runs the question-answering flow. It never returns an error; every
// failure ends in a terminal state with a user-facing message.
type Answerer struct {
	embedder  Embedder
	store     vector.Store
	generator Generator
	assembler *Assembler
	limit     int
	genOpts   generation.Options
	onState   func(State)
	logger    *zap.Logger
}

// Option configures an Answerer.
type Option func(*Answerer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Answerer) { a.logger = l }
}

// WithSimilarityLimit sets how many fragments are retrieved.
func WithSimilarityLimit(k int) Option {
	return func(a *Answerer) {
		if k > 0 {
			a.limit = k
		}
	}
}

// WithMaxContextChars bounds the assembled context.
func WithMaxContextChars(n int) Option {
	return func(a *Answerer) { a.assembler = NewAssembler(n) }
}

// WithGenerationOptions sets the generation preset.
func WithGenerationOptions(o generation.Options) Option {
	return func(a *Answerer) { a.genOpts = o }
}

// WithStateHook registers fn to observe every state transition.
func WithStateHook(fn func(State)) Option {
	return func(a *Answerer) { a.onState = fn }
}

// NewAnswerer creates an Answerer.
func NewAnswerer(embedder Embedder, store vector.Store, generator Generator, opts ...Option) *Answerer {
	a := &Answerer{
		embedder:  embedder,
		store:     store,
		generator: generator,
		assembler: NewAssembler(DefaultMaxContextChars),
		limit:     DefaultSimilarityLimit,
		genOpts:   generation.AnswerOptions(0.7, 1024),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = utils.OrNop(a.logger)
	return a
}

func (a *Answerer) enter(s State) State {
	if a.onState != nil {
		a.onState(s)
	}
	return s
}

// Answer runs the full flow for question.
func (a *Answerer) Answer(ctx context.Context, question string) Answer {
	requestID := uuid.NewString()
	log := a.logger.With(zap.String("request_id", requestID))

	a.enter(StateEmbedding)
	emb := a.embedder.Embed(ctx, question)
	if len(emb) == 0 {
		log.Warn("question embedding unavailable")
		return Answer{Text: MsgNoEmbedding, State: a.enter(StateNoEmbedding)}
	}

	a.enter(StateRetrieving)
	results, err := a.store.Query(ctx, emb, a.limit)
	if err != nil {
		log.Error("similarity query failed", zap.Error(err))
		return Answer{Text: MsgRetrievalFailed, State: a.enter(StateRetrievalFailed)}
	}
	results = slices.DeleteFunc(results, func(r models.SimilarityResult) bool {
		return strings.TrimSpace(r.Content) == ""
	})
	if len(results) == 0 {
		return Answer{Text: MsgNoResults, State: a.enter(StateNoResults)}
	}

	a.enter(StateAssembling)
	contextText, sources := a.assembler.Assemble(results)
	log.Debug("context assembled",
		zap.Int("fragments", len(sources)),
		zap.Int("runes", utils.RuneCount(contextText)))
	if strings.TrimSpace(contextText) == "" {
		return Answer{Text: MsgNoResults, State: a.enter(StateNoResults)}
	}

	a.enter(StateGenerating)
	req := generation.AnswerRequest(contextText, question, a.genOpts)
	req.RequestID = requestID
	text := a.generator.Generate(ctx, req)

	return Answer{Text: text, State: a.enter(StateDone), Sources: sources}
}

// AnswerQuestion returns only the answer text.
func (a *Answerer) AnswerQuestion(ctx context.Context, question string) string {
	return a.Answer(ctx, question).Text
}

// Response is the wire form of the answer.
func (a Answer) Response() models.AskResponse {
	return models.AskResponse{Response: a.Text, State: string(a.State), Sources: a.Sources}
}
