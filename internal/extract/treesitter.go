package extract

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// parseTree parses source with lang. A new tree-sitter parser is created per
// call so callers on different goroutines never share C state. The caller
// must Close the returned tree.
func parseTree(lang *tree_sitter.Language, source []byte) (*tree_sitter.Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree")
	}
	return tree, nil
}

// firstErrorLine returns the 1-based line of the first ERROR or MISSING node
// under n, or 0 if the subtree is clean.
func firstErrorLine(n *tree_sitter.Node) int {
	if n == nil || !n.HasError() {
		return 0
	}
	if n.IsError() || n.IsMissing() {
		return startLine(n)
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if line := firstErrorLine(n.Child(i)); line > 0 {
			return line
		}
	}
	return startLine(n)
}

func startLine(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func endLine(n *tree_sitter.Node) int {
	return int(n.EndPosition().Row) + 1
}

// childOfKind returns the first direct child of n with the given kind.
func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	if n == nil {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// hasToken reports whether n has a direct (possibly anonymous) child whose
// kind is token, e.g. "async", "static" or "*".
func hasToken(n *tree_sitter.Node, token string) bool {
	return childOfKind(n, token) != nil
}

// namedChildren returns the named children of n in order.
func namedChildren(n *tree_sitter.Node) []*tree_sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*tree_sitter.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}
