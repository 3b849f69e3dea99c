package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yildizm/go-promptfmt"
	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/ai"
	"github.com/swapnilxi/grab-hack/internal/ai/providers/mock"
)

type nilCompleter struct{}

func (nilCompleter) Complete(context.Context, *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	return nil, nil
}

func TestGenerate(t *testing.T) {
	p := mock.New(4).WithReplies("Refunds settle in 5 business days.")
	c := NewClient(p, WithLogger(zap.NewNop()), WithModel("claude"))

	got := c.Generate(context.Background(), Request{
		System:    "sys",
		Prompt:    "how long do refunds take?",
		Options:   AnswerOptions(0.7, 1024),
		RequestID: "req-1",
	})
	if got != "Refunds settle in 5 business days." {
		t.Errorf("got %q", got)
	}

	reqs := p.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d", len(reqs))
	}
	r := reqs[0]
	if r.MaxTokens != 1024 || r.Temperature != 0.7 || r.TopP != 0 {
		t.Errorf("options not forwarded: %+v", r)
	}
	if r.Model != "claude" || r.SystemPrompt != "sys" || r.RequestID != "req-1" {
		t.Errorf("request fields: %+v", r)
	}
}

func TestGenerate_failuresReturnSentinel(t *testing.T) {
	tests := []struct {
		name      string
		completer Completer
	}{
		{"provider error", mock.New(4).FailComplete(ai.NewProviderError(ai.ErrTypeAuthentication, "bad key", "mock"))},
		{"plain error", mock.New(4).FailComplete(errors.New("connection reset"))},
		{"blank content", mock.New(4).WithReplies("   ")},
		{"nil response", nilCompleter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewClient(tt.completer).Generate(context.Background(), Request{Prompt: "q"})
			if got != FailureSentinel {
				t.Errorf("got %q, want sentinel", got)
			}
		})
	}
}

func TestDecisionOptions(t *testing.T) {
	o := DecisionOptions(128)
	if o.Temperature != 0 || o.TopP != 1 || o.MaxTokens != 128 {
		t.Errorf("DecisionOptions = %+v", o)
	}
}

func TestAnswerRequest(t *testing.T) {
	req := AnswerRequest("chunk one\n---\nchunk two", "What is the refund window?", AnswerOptions(0.7, 1024))
	for _, want := range []string{"chunk one", "chunk two", "Question: What is the refund window?"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, req.Prompt)
		}
	}
	if req.System != answerSystem {
		t.Errorf("System = %q", req.System)
	}
	if strings.Contains(req.Prompt, "System:") || strings.Contains(req.Prompt, answerSystem) {
		t.Errorf("system text repeated in prompt:\n%s", req.Prompt)
	}
	if req.Options.MaxTokens != 1024 {
		t.Errorf("options = %+v", req.Options)
	}
}

func TestFromPrompt(t *testing.T) {
	p := promptfmt.New().
		System("be brief").
		User("first").
		User("second").
		Build()
	req := FromPrompt(p, DecisionOptions(64))
	if req.System != "be brief" {
		t.Errorf("System = %q", req.System)
	}
	if req.Prompt != "first\n\nsecond" {
		t.Errorf("Prompt = %q", req.Prompt)
	}
	if req.Options.MaxTokens != 64 {
		t.Errorf("options = %+v", req.Options)
	}
}
