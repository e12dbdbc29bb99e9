// Package scan discovers the source files a run documents and loads them
// as pipeline inputs.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/dusk-indust/autodocs/internal/extract"
	"github.com/dusk-indust/autodocs/internal/orchestrator"
)

// Matcher reports whether a path is excluded by a set of globs. A glob
// excludes a path when it matches the slash-separated path relative to the
// scan root, or any single element of it.
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher wraps compiled globs.
func NewMatcher(globs []glob.Glob) *Matcher {
	return &Matcher{globs: globs}
}

// Excluded reports whether rel, a path relative to a scan root, is
// excluded.
func (m *Matcher) Excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return false
	}
	for _, g := range m.globs {
		if g.Match(rel) {
			return true
		}
		for _, elem := range strings.Split(rel, "/") {
			if g.Match(elem) {
				return true
			}
		}
	}
	return false
}

// Scanner walks roots for files with a supported extension.
type Scanner struct {
	exclude *Matcher
}

// New creates a Scanner that skips paths matched by exclude.
func New(exclude []glob.Glob) *Scanner {
	return &Scanner{exclude: NewMatcher(exclude)}
}

// Supported reports whether path has an extension some extractor handles.
func Supported(path string) bool {
	_, err := extract.GrammarForPath(path)
	return err == nil
}

// Files returns the absolute paths of every supported, non-excluded file
// under roots, sorted and without duplicates. A root naming a file is
// returned as is, whatever its extension, so the pipeline can report it.
func (s *Scanner) Files(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		if !info.IsDir() {
			add(abs)
			continue
		}

		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(abs, path)
			if err != nil {
				return err
			}
			if d.IsDir() {
				if s.exclude.Excluded(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || !Supported(path) || s.exclude.Excluded(rel) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Load reads every path into an Input.
func Load(ctx context.Context, paths []string) ([]orchestrator.Input, error) {
	inputs := make([]orchestrator.Input, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, orchestrator.Input{Path: path, Content: content})
	}
	return inputs, nil
}

// Inputs scans roots and loads the files found.
func (s *Scanner) Inputs(ctx context.Context, roots []string) ([]orchestrator.Input, error) {
	files, err := s.Files(roots)
	if err != nil {
		return nil, err
	}
	return Load(ctx, files)
}
