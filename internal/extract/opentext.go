package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractOpenText handles ODT and RTF documents.
func extractOpenText(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	return strings.TrimSpace(text), nil
}
