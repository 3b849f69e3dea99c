package vector

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/swapnilxi/grab-hack/internal/models"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero norm", []float32{0, 0}, []float32{1, 0}, 1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 1},
		{"nan component", []float32{float32(math.NaN()), 1}, []float32{1, 1}, 1},
		{"infinite component", []float32{1, 0}, []float32{float32(math.Inf(1)), 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineDistance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CosineDistance = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeFloat32s(t *testing.T) {
	in := []float32{0, -1.5, 3.25, math.MaxFloat32}
	b := EncodeFloat32s(in)
	if len(b) != 16 {
		t.Fatalf("len = %d", len(b))
	}
	out := DecodeFloat32s(append(b, 0xFF))
	if len(out) != len(in) {
		t.Fatalf("decoded %d values", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestMemoryStore_QueryWithNonFiniteVector(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemoryStore(2)
	if err != nil {
		t.Fatal(err)
	}
	chunks := []*models.DocumentChunk{
		{ID: "broken", Content: "nan", Embedding: []float32{float32(math.NaN()), 1}},
		{ID: "far", Content: "far", Embedding: []float32{-1, 0}},
		{ID: "near", Content: "near", Embedding: []float32{1, 0.1}},
	}
	for _, c := range chunks {
		if _, err := m.Upsert(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	res, err := m.Query(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range res {
		ids = append(ids, r.ID)
		if math.IsNaN(r.Distance) {
			t.Errorf("%s: NaN distance", r.ID)
		}
	}
	if want := []string{"near", "broken", "far"}; !slices.Equal(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
}
