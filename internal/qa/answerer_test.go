package qa

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/ai/providers/mock"
	"github.com/swapnilxi/grab-hack/internal/embedding"
	"github.com/swapnilxi/grab-hack/internal/generation"
	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/internal/vector"
)

const dim = 8

type failingStore struct {
	*vector.MemoryStore
}

func (failingStore) Query(context.Context, []float32, int) ([]models.SimilarityResult, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	provider *mock.Provider
	store    *vector.MemoryStore
	answerer *Answerer
	states   []State
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{provider: mock.New(dim)}
	store, err := vector.NewMemoryStore(dim)
	if err != nil {
		t.Fatal(err)
	}
	f.store = store
	opts = append([]Option{
		WithLogger(zap.NewNop()),
		WithStateHook(func(s State) { f.states = append(f.states, s) }),
	}, opts...)
	f.answerer = NewAnswerer(
		embedding.NewClient(f.provider, dim),
		store,
		generation.NewClient(f.provider),
		opts...,
	)
	return f
}

func (f *fixture) add(t *testing.T, id, content string) {
	t.Helper()
	vec, err := f.provider.Embed(context.Background(), content)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.Upsert(context.Background(), &models.DocumentChunk{ID: id, Content: content, Embedding: vec}); err != nil {
		t.Fatal(err)
	}
}

func statePath(states []State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ">")
}

func TestAnswer_done(t *testing.T) {
	f := newFixture(t)
	f.provider.WithReplies("Chargebacks must be raised within 120 days.")
	f.add(t, "datasets/chargebacks.txt", "Chargeback window is 120 days.")
	f.add(t, "datasets/payouts.txt", "Payouts run daily at 02:00.")

	ans := f.answerer.Answer(context.Background(), "Chargeback window is 120 days.")
	if ans.State != StateDone {
		t.Fatalf("state = %s", ans.State)
	}
	if ans.Text != "Chargebacks must be raised within 120 days." {
		t.Errorf("text = %q", ans.Text)
	}
	if len(ans.Sources) == 0 || ans.Sources[0] != "datasets/chargebacks.txt" {
		t.Errorf("sources = %v", ans.Sources)
	}
	if got := statePath(f.states); got != "embedding>retrieving>assembling>generating>done" {
		t.Errorf("states = %s", got)
	}

	reqs := f.provider.Requests()
	if len(reqs) != 1 {
		t.Fatalf("generation calls = %d", len(reqs))
	}
	if !strings.Contains(reqs[0].Prompt, "Chargeback window is 120 days.") {
		t.Errorf("prompt lacks retrieved context:\n%s", reqs[0].Prompt)
	}
	if reqs[0].RequestID == "" {
		t.Error("request id should be set")
	}
}

func TestAnswer_noEmbedding(t *testing.T) {
	f := newFixture(t)
	f.add(t, "doc", "content")
	f.provider.FailEmbed(errors.New("throttled"))

	ans := f.answerer.Answer(context.Background(), "anything")
	if ans.State != StateNoEmbedding || ans.Text != MsgNoEmbedding {
		t.Errorf("answer = %+v", ans)
	}
	if len(f.provider.Requests()) != 0 {
		t.Error("generation must not be called")
	}
	if got := statePath(f.states); got != "embedding>no_embedding" {
		t.Errorf("states = %s", got)
	}
}

func TestAnswer_noResults(t *testing.T) {
	f := newFixture(t)
	ans := f.answerer.Answer(context.Background(), "is the store empty?")
	if ans.State != StateNoResults || ans.Text != MsgNoResults {
		t.Errorf("answer = %+v", ans)
	}
	if len(f.provider.Requests()) != 0 {
		t.Error("generation must not be called with empty context")
	}
}

func (f *fixture) addWithVector(t *testing.T, id, content string, vec []float32) {
	t.Helper()
	if _, err := f.store.Upsert(context.Background(), &models.DocumentChunk{ID: id, Content: content, Embedding: vec}); err != nil {
		t.Fatal(err)
	}
}

func TestAnswer_blankContextSkipsGeneration(t *testing.T) {
	question := "why was payout 77 held?"
	vec, err := mock.New(dim).Embed(context.Background(), question)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("blank chunk", func(t *testing.T) {
		f := newFixture(t)
		f.addWithVector(t, "datasets/blank.txt", "", vec)
		f.addWithVector(t, "datasets/spaces.txt", " \n\t", vec)

		ans := f.answerer.Answer(context.Background(), question)
		if ans.State != StateNoResults || ans.Text != MsgNoResults || len(ans.Sources) != 0 {
			t.Errorf("answer = %+v", ans)
		}
		if n := len(f.provider.Requests()); n != 0 {
			t.Errorf("generation calls = %d, want 0", n)
		}
		if got := statePath(f.states); got != "embedding>retrieving>no_results" {
			t.Errorf("states = %s", got)
		}
	})

	t.Run("budget keeps only whitespace", func(t *testing.T) {
		f := newFixture(t, WithMaxContextChars(3))
		f.addWithVector(t, "datasets/indented.txt", "    payout held for KYC", vec)

		ans := f.answerer.Answer(context.Background(), question)
		if ans.State != StateNoResults {
			t.Errorf("answer = %+v", ans)
		}
		if n := len(f.provider.Requests()); n != 0 {
			t.Errorf("generation calls = %d, want 0", n)
		}
	})
}

func TestAnswer_retrievalFailed(t *testing.T) {
	p := mock.New(dim)
	mem, _ := vector.NewMemoryStore(dim)
	a := NewAnswerer(embedding.NewClient(p, dim), failingStore{mem}, generation.NewClient(p))

	ans := a.Answer(context.Background(), "q")
	if ans.State != StateRetrievalFailed || ans.Text != MsgRetrievalFailed {
		t.Errorf("answer = %+v", ans)
	}
	if len(p.Requests()) != 0 {
		t.Error("generation must not be called")
	}
}

func TestAnswer_generationFailure(t *testing.T) {
	f := newFixture(t)
	f.add(t, "doc", "content")
	f.provider.FailComplete(errors.New("model overloaded"))

	ans := f.answerer.Answer(context.Background(), "content")
	if ans.State != StateDone || ans.Text != generation.FailureSentinel {
		t.Errorf("answer = %+v", ans)
	}
}

func TestAnswer_similarityLimit(t *testing.T) {
	f := newFixture(t, WithSimilarityLimit(2))
	for _, id := range []string{"a", "b", "c", "d"} {
		f.add(t, id, "document "+id)
	}
	ans := f.answerer.Answer(context.Background(), "document a")
	if len(ans.Sources) != 2 {
		t.Errorf("sources = %v, want 2", ans.Sources)
	}
}

func TestAnswerQuestion(t *testing.T) {
	f := newFixture(t)
	if got := f.answerer.AnswerQuestion(context.Background(), "q"); got != MsgNoResults {
		t.Errorf("got %q", got)
	}
}
