package qa

import (
	"strings"
	"testing"

	"github.com/swapnilxi/grab-hack/internal/models"
)

func results(contents ...string) []models.SimilarityResult {
	out := make([]models.SimilarityResult, len(contents))
	for i, c := range contents {
		out[i] = models.SimilarityResult{ID: string(rune('a' + i)), Content: c, Distance: float64(i) / 10}
	}
	return out
}

func TestAssemble_empty(t *testing.T) {
	ctx, ids := NewAssembler(0).Assemble(nil)
	if ctx != "" || ids != nil {
		t.Errorf("Assemble(nil) = %q, %v", ctx, ids)
	}
}

func TestAssemble_joinsInOrder(t *testing.T) {
	ctx, ids := NewAssembler(0).Assemble(results("first", "second", "third"))
	if ctx != "first\n---\nsecond\n---\nthird" {
		t.Errorf("context = %q", ctx)
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Errorf("ids = %v", ids)
	}
}

func TestAssemble_bound(t *testing.T) {
	// "aaaa" + sep(5) + "bbbb" = 13 runes; "cccccccc" would exceed 20, "dd" fits.
	ctx, ids := NewAssembler(20).Assemble(results("aaaa", "bbbb", "cccccccc", "dd"))
	if ctx != "aaaa\n---\nbbbb\n---\ndd" {
		t.Errorf("context = %q", ctx)
	}
	if strings.Join(ids, ",") != "a,b,d" {
		t.Errorf("ids = %v", ids)
	}
	if n := len([]rune(ctx)); n > 20 {
		t.Errorf("context has %d runes", n)
	}
}

func TestAssemble_truncatesOversizedFirst(t *testing.T) {
	ctx, ids := NewAssembler(5).Assemble(results("日本語テキスト", "x"))
	if ctx != "日本語テキ" {
		t.Errorf("context = %q", ctx)
	}
	if len(ids) != 1 || ids[0] != "a" {
		t.Errorf("ids = %v", ids)
	}
}
