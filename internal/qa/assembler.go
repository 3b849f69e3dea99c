// Package qa answers questions from the vector store: embed, retrieve,
// assemble context, generate.
package qa

import (
	"strings"

	"github.com/swapnilxi/grab-hack/internal/models"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

const (
	// Separator joins context fragments.
	Separator = "\n---\n"
	// DefaultMaxContextChars bounds the assembled context in runes.
	DefaultMaxContextChars = 30000
)

// Assembler joins retrieved fragments into one context string.
type Assembler struct {
	maxChars int
}

// NewAssembler returns an assembler bounded to maxChars runes. Non-positive
// values use DefaultMaxContextChars.
func NewAssembler(maxChars int) *Assembler {
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	return &Assembler{maxChars: maxChars}
}

// Assemble joins result contents in ranking order and returns the IDs of the
// fragments used, in the same order. A fragment that would push the context
// past the bound is dropped; a first fragment larger than the bound is
// truncated to it.
func (a *Assembler) Assemble(results []models.SimilarityResult) (string, []string) {
	if len(results) == 0 {
		return "", nil
	}
	sepLen := utils.RuneCount(Separator)

	var (
		b     strings.Builder
		ids   []string
		total int
	)
	for i, r := range results {
		n := utils.RuneCount(r.Content)
		if i == 0 {
			content := r.Content
			if n > a.maxChars {
				content = utils.TruncateRunes(content, a.maxChars)
				n = a.maxChars
			}
			b.WriteString(content)
			ids = append(ids, r.ID)
			total = n
			continue
		}
		if total+sepLen+n > a.maxChars {
			continue
		}
		b.WriteString(Separator)
		b.WriteString(r.Content)
		ids = append(ids, r.ID)
		total += sepLen + n
	}
	return b.String(), ids
}
