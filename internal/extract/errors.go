package extract

import (
	"fmt"

	"github.com/dusk-indust/autodocs/internal/model"
)

// GrammarError reports a source file its grammar's extractor could not
// parse. It is fatal for that file only.
type GrammarError struct {
	Path    string
	Grammar model.Grammar
	Line    int // 1-based; 0 when unknown
	Message string
}

// Error implements the error interface.
func (e *GrammarError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("extract: %s (%s): line %d: %s", e.Path, e.Grammar, e.Line, e.Message)
	}
	return fmt.Sprintf("extract: %s (%s): %s", e.Path, e.Grammar, e.Message)
}

// UnsupportedGrammarError is returned when a file extension maps to no
// known extractor.
type UnsupportedGrammarError struct {
	Path string
	Ext  string
}

// Error implements the error interface.
func (e *UnsupportedGrammarError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("extract: %s: no extension, cannot select a grammar", e.Path)
	}
	return fmt.Sprintf("extract: %s: unsupported extension %q", e.Path, e.Ext)
}
