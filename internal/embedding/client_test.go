package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type recordingEmbedder struct {
	dim    int
	err    error
	length int
	inputs []string
}

func (r *recordingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	r.inputs = append(r.inputs, text)
	if r.err != nil {
		return nil, r.err
	}
	n := r.dim
	if r.length > 0 {
		n = r.length
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i + 1)
	}
	return v, nil
}

func (r *recordingEmbedder) Dimensions() int { return r.dim }

func (r *recordingEmbedder) Name() string { return "recording" }

func TestClient_Embed(t *testing.T) {
	r := &recordingEmbedder{dim: 4}
	c := NewClient(r, 4, WithLogger(zap.NewNop()))
	v := c.Embed(context.Background(), "refund policy")
	if len(v) != 4 {
		t.Fatalf("len = %d, want 4", len(v))
	}
	if len(r.inputs) != 1 || r.inputs[0] != "refund policy" {
		t.Errorf("inputs = %v", r.inputs)
	}
}

func TestClient_Embed_blankSkipsProvider(t *testing.T) {
	r := &recordingEmbedder{dim: 4}
	c := NewClient(r, 4)
	for _, in := range []string{"", "   ", "\n\t"} {
		if v := c.Embed(context.Background(), in); v != nil {
			t.Errorf("Embed(%q) = %v, want nil", in, v)
		}
	}
	if len(r.inputs) != 0 {
		t.Errorf("provider called %d times", len(r.inputs))
	}
}

func TestClient_Embed_truncatesInput(t *testing.T) {
	r := &recordingEmbedder{dim: 2}
	c := NewClient(r, 2, WithMaxInputChars(5))
	c.Embed(context.Background(), "日本語のテキスト")
	if len(r.inputs) != 1 {
		t.Fatal("expected one provider call")
	}
	if got := []rune(r.inputs[0]); len(got) != 5 {
		t.Errorf("submitted %d runes, want 5", len(got))
	}

	long := strings.Repeat("a", 3000)
	r2 := &recordingEmbedder{dim: 2}
	NewClient(r2, 2).Embed(context.Background(), long)
	if len(r2.inputs[0]) != DefaultMaxInputChars {
		t.Errorf("default truncation: %d", len(r2.inputs[0]))
	}
}

func TestClient_Embed_failuresDegradeToEmpty(t *testing.T) {
	tests := []struct {
		name string
		emb  *recordingEmbedder
	}{
		{"provider error", &recordingEmbedder{dim: 4, err: errors.New("unauthorized")}},
		{"short vector", &recordingEmbedder{dim: 4, length: 3}},
		{"long vector", &recordingEmbedder{dim: 4, length: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.emb, 4)
			if v := c.Embed(context.Background(), "text"); len(v) != 0 {
				t.Errorf("got %d-length vector, want empty", len(v))
			}
		})
	}
}

func TestClient_Embed_cache(t *testing.T) {
	r := &recordingEmbedder{dim: 3}
	c := NewClient(r, 3, WithCacheSize(10))
	c.Embed(context.Background(), "same")
	c.Embed(context.Background(), "same")
	if len(r.inputs) != 1 {
		t.Errorf("provider calls = %d, want 1", len(r.inputs))
	}
	if st := c.CacheStats(); st.Hits != 1 || st.Misses != 1 {
		t.Errorf("CacheStats = %+v, want 1 hit and 1 miss", st)
	}
	if st := NewClient(r, 3).CacheStats(); st != (CacheStats{}) {
		t.Errorf("uncached CacheStats = %+v", st)
	}

	failing := &recordingEmbedder{dim: 3, err: errors.New("down")}
	fc := NewClient(failing, 3, WithCacheSize(10))
	fc.Embed(context.Background(), "x")
	fc.Embed(context.Background(), "x")
	if len(failing.inputs) != 2 {
		t.Errorf("failures must not be cached, calls = %d", len(failing.inputs))
	}
}
