package extract

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/autodocs/internal/model"
)

// verifySyntax parses source with lang and reports the first syntax error
// as a GrammarError. The heuristic extractors use it in strict mode only;
// the tree itself is discarded.
func verifySyntax(lang *tree_sitter.Language, path string, grammar model.Grammar, source []byte) error {
	tree, err := parseTree(lang, source)
	if err != nil {
		return &GrammarError{Path: path, Grammar: grammar, Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}
	return &GrammarError{
		Path:    path,
		Grammar: grammar,
		Line:    firstErrorLine(root),
		Message: "syntax error",
	}
}
