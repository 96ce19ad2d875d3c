package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semmerge/rdf"
)

// Extensions lists the file extensions read as documents.
var Extensions = []string{".yaml", ".yml", ".json"}

// ResolvePaths expands glob patterns relative to root into document files.
// Supports both single-level wildcards (*) and recursive wildcards (**).
//
// Files keep pattern order, matches within one pattern are sorted, and a
// file matched twice is kept at its first position. A pattern without
// matches is an error.
func ResolvePaths(root string, patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(root, pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

// resolvePattern expands a single glob pattern to files.
func resolvePattern(root, pattern string) ([]string, error) {
	if !filepath.IsAbs(pattern) && root != "" {
		pattern = filepath.Join(root, pattern)
	}
	absPattern, err := filepath.Abs(pattern)
	if err != nil {
		return nil, err
	}

	// Check if the pattern contains glob characters
	if !containsGlob(absPattern) {
		info, err := os.Stat(absPattern)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", absPattern)
		}
		return []string{absPattern}, nil
	}

	// Use doublestar for ** support
	matches, err := doublestar.FilepathGlob(absPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		if IsDocument(match) {
			files = append(files, match)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no documents match pattern: %s", pattern)
	}
	slices.Sort(files)
	return files, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// IsDocument reports whether path has a document extension.
func IsDocument(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// LoadFile reads one document file.
func LoadFile(path string) ([]rdf.Triple, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	triples, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", path, err)
	}
	return triples, nil
}

// Loader reads document sets.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load resolves patterns against root and reads each file as one document,
// in resolved order. It returns the documents and their paths.
func (l *Loader) Load(root string, patterns []string) ([][]rdf.Triple, []string, error) {
	paths, err := ResolvePaths(root, patterns)
	if err != nil {
		return nil, nil, err
	}

	docs := make([][]rdf.Triple, 0, len(paths))
	total := 0
	for _, path := range paths {
		triples, err := LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		l.logger.Debug("Loaded document", "path", path, "triples", len(triples))
		docs = append(docs, triples)
		total += len(triples)
	}

	l.logger.Info("Loaded documents", "documents", len(docs), "triples", total)
	return docs, paths, nil
}
