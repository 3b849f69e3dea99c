// Package extract turns source files into plain text for ingestion.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the file types ingested when none are configured.
var DefaultExtensions = []string{".txt", ".md", ".log", ".json", ".csv"}

type decodeFunc func(content []byte) (string, error)

var decoders = map[string]decodeFunc{
	".pdf":  extractPDF,
	".docx": extractDOCX,
	".odt":  extractOpenText,
	".rtf":  extractOpenText,
	".xlsx": extractExcel,
	".txt":  extractPlain,
	".md":   extractPlain,
	".rst":  extractPlain,
	".log":  extractPlain,
	".json": extractPlain,
	".csv":  extractPlain,
}

// Extractor turns a file into ingestible text, choosing a decoder by
// extension. The zero value is ready to use.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads path and decodes it by its extension.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes decodes content for ext, given with its leading dot in any
// case. Extensions without a decoder are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	decode, ok := decoders[strings.ToLower(ext)]
	if !ok {
		decode = extractPlain
	}
	return decode(content)
}

// Supported reports whether ext has a decoder.
func Supported(ext string) bool {
	_, ok := decoders[strings.ToLower(ext)]
	return ok
}

// Extensions lists every supported extension in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
