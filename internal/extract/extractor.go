package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/autodocs/internal/model"
)

// Extractor turns the raw text of one source file into a Module.
// Implementations: ecmaExtractor (tree walk), pythonExtractor (indentation
// scan), goExtractor (brace-depth scan).
type Extractor interface {
	// Extract builds the Module for a single source file. source is the
	// file content; grammar is the dialect selected by the caller.
	Extract(ctx context.Context, path string, source []byte, grammar model.Grammar) (model.Module, error)

	// Grammars returns the grammars this extractor handles.
	Grammars() []model.Grammar
}

// Options tunes extractor behavior.
type Options struct {
	// Strict makes the heuristic extractors reject input they would
	// otherwise segment on a best-effort basis.
	Strict bool
}

// extToGrammar maps lower-cased file extensions to grammars.
var extToGrammar = map[string]model.Grammar{
	".js":  model.GrammarJavaScript,
	".mjs": model.GrammarJavaScript,
	".cjs": model.GrammarJavaScript,
	".jsx": model.GrammarJavaScript,
	".ts":  model.GrammarTypeScript,
	".mts": model.GrammarTypeScript,
	".cts": model.GrammarTypeScript,
	".tsx": model.GrammarTypeScript,
	".py":  model.GrammarPython,
	".pyi": model.GrammarPython,
	".go":  model.GrammarGo,
}

// GrammarForPath selects a grammar by file extension.
func GrammarForPath(path string) (model.Grammar, error) {
	ext := strings.ToLower(filepath.Ext(path))
	g, ok := extToGrammar[ext]
	if !ok {
		return "", &UnsupportedGrammarError{Path: path, Ext: ext}
	}
	return g, nil
}

// SupportedExtensions returns every extension with an extractor, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extToGrammar))
	for ext := range extToGrammar {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Registry dispatches files to the extractor for their grammar.
type Registry struct {
	extractors map[model.Grammar]Extractor
}

// NewRegistry creates a Registry with all four grammars registered.
func NewRegistry(opts Options) *Registry {
	r := &Registry{extractors: make(map[model.Grammar]Extractor)}
	for _, ext := range []Extractor{
		newECMAExtractor(),
		newPythonExtractor(opts),
		newGoExtractor(opts),
	} {
		for _, g := range ext.Grammars() {
			r.extractors[g] = ext
		}
	}
	return r
}

// Extract selects an extractor by the extension of path and runs it. The
// returned Module is not yet normalized.
func (r *Registry) Extract(ctx context.Context, path string, source []byte) (model.Module, error) {
	grammar, err := GrammarForPath(path)
	if err != nil {
		return model.Module{}, err
	}
	ext, ok := r.extractors[grammar]
	if !ok {
		return model.Module{}, fmt.Errorf("no extractor for grammar: %s", grammar)
	}
	if err := ctx.Err(); err != nil {
		return model.Module{}, err
	}
	return ext.Extract(ctx, path, source, grammar)
}

// Parse extracts and normalizes path in one step.
func (r *Registry) Parse(ctx context.Context, path string, source []byte) (model.Module, error) {
	m, err := r.Extract(ctx, path, source)
	if err != nil {
		return model.Module{}, err
	}
	return model.Normalize(m), nil
}

// Grammars returns the registered grammars in model.Grammars order.
func (r *Registry) Grammars() []model.Grammar {
	var out []model.Grammar
	for _, g := range model.Grammars {
		if _, ok := r.extractors[g]; ok {
			out = append(out, g)
		}
	}
	return out
}
