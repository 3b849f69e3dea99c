package ingest

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/swapnilxi/grab-hack/internal/extract"
	"github.com/swapnilxi/grab-hack/pkg/utils"
)

// TextExtractor reads a file's text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// DirectorySource walks root and yields a Document per file whose extension is
// in extensions (all supported files when empty). The document ID is the
// walked path in slash form. Unreadable files are logged and skipped.
func DirectorySource(root string, extensions []string, extractor TextExtractor, logger *zap.Logger) iter.Seq[Document] {
	logger = utils.OrNop(logger)
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	return func(yield func(Document) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !MatchExtension(path, extensions) {
				return nil
			}
			text, err := extractor.Extract(path)
			if err != nil {
				logger.Warn("failed to extract file", zap.String("path", path), zap.Error(err))
				return nil
			}
			if !yield(Document{ID: filepath.ToSlash(path), Text: text}) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			logger.Warn("directory walk stopped", zap.String("root", root), zap.Error(err))
		}
	}
}

// MatchExtension reports whether path has one of extensions, compared
// case-insensitively with or without the leading dot. An empty list accepts
// every extension the extractor supports.
func MatchExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if len(extensions) == 0 {
		return extract.Supported(ext)
	}
	want := strings.TrimPrefix(ext, ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == want {
			return true
		}
	}
	return false
}
