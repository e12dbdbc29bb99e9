package extract

import (
	"context"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/dusk-indust/autodocs/internal/model"
)

var (
	pyDefRe       = regexp.MustCompile(`^(\s*)(async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe     = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)\s*`)
	pyDecoratorRe = regexp.MustCompile(`^\s*@([\w.]+)`)
	pyImportRe    = regexp.MustCompile(`^import\s+(.+)$`)
	pyFromRe      = regexp.MustCompile(`^from\s+(\S+)\s+import\s+(.+)$`)
	pyAllRe       = regexp.MustCompile(`^__all__\s*(?::[^=]*)?\+?=\s*`)
	pyAnnotatedRe = regexp.MustCompile(`^([A-Za-z_]\w*)\s*:\s*([^=]+?)\s*(?:=.*)?$`)
	pyAssignedRe  = regexp.MustCompile(`^([A-Za-z_]\w*)\s*=[^=]`)
	pySelfAttrRe  = regexp.MustCompile(`^\s*self\.([A-Za-z_]\w*)\s*(?::\s*([^=]+?))?\s*=[^=]`)
	pyYieldRe     = regexp.MustCompile(`\byield\b`)
)

var pyKeywords = map[string]bool{
	"if": true, "elif": true, "else": true, "for": true, "while": true,
	"try": true, "except": true, "finally": true, "with": true, "return": true,
	"lambda": true, "match": true, "case": true, "pass": true, "raise": true,
}

// pythonExtractor segments Python source by indentation. It never builds a
// tree; with Strict set the tree-sitter Python grammar is consulted only to
// reject input the scanner would mis-segment.
type pythonExtractor struct {
	strict bool
	lang   *tree_sitter.Language
}

func newPythonExtractor(opts Options) *pythonExtractor {
	return &pythonExtractor{
		strict: opts.Strict,
		lang:   tree_sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

func (e *pythonExtractor) Grammars() []model.Grammar {
	return []model.Grammar{model.GrammarPython}
}

func (e *pythonExtractor) Extract(_ context.Context, path string, source []byte, grammar model.Grammar) (model.Module, error) {
	lines := splitLines(source)
	if e.strict {
		if err := verifySyntax(e.lang, path, grammar, source); err != nil {
			return model.Module{}, err
		}
		if line := mixedIndentLine(lines); line > 0 {
			return model.Module{}, &GrammarError{
				Path:    path,
				Grammar: grammar,
				Line:    line,
				Message: "inconsistent use of tabs and spaces in indentation",
			}
		}
	}

	s := &pyScanner{
		lines: lines,
		mod: model.Module{
			Path:    path,
			Grammar: grammar,
			RawText: string(source),
		},
	}
	s.scan()
	return s.mod, nil
}

// pyBlock is an open def or class while scanning.
type pyBlock struct {
	class   bool
	end     int // 0-based index of the last line in the block
	typeIdx int // index into Module.Symbols for top-level classes
	ignored bool
}

// pyHeader is a def or class header that may span several lines.
type pyHeader struct {
	inner   string // text between the header's parentheses
	tail    string // text after the closing parenthesis
	lastIdx int    // 0-based index of the header's last line
}

type pyScanner struct {
	lines []string
	mod   model.Module
}

func (s *pyScanner) scan() {
	var stack []pyBlock
	open := ""
	for i := 0; i < len(s.lines); i++ {
		line := s.lines[i]
		if open != "" {
			open = updateTriple(line, open)
			continue
		}
		for len(stack) > 0 && stack[len(stack)-1].end < i {
			stack = stack[:len(stack)-1]
		}
		var parent *pyBlock
		if len(stack) > 0 {
			parent = &stack[len(stack)-1]
		}

		if m := pyDefRe.FindStringSubmatchIndex(line); m != nil {
			h, ok := s.header(i, m[1]-1)
			if !ok {
				continue
			}
			block := pyBlock{end: s.blockEnd(h.lastIdx, indentWidth(line)), typeIdx: -1}
			name := line[m[6]:m[7]]
			switch {
			case parent == nil:
				fn := s.function(i, h, block.end, name, m[4] >= 0, false)
				s.mod.Symbols = append(s.mod.Symbols, model.FunctionSym(fn))
			case parent.class && !parent.ignored:
				s.method(parent.typeIdx, i, h, block.end, name, m[4] >= 0)
			default:
				block.ignored = true
			}
			stack = append(stack, block)
			i = h.lastIdx
			continue
		}

		if m := pyClassRe.FindStringSubmatchIndex(line); m != nil {
			h := pyHeader{lastIdx: i}
			rest := line[m[1]:]
			if strings.HasPrefix(rest, "(") {
				var ok bool
				if h, ok = s.header(i, m[1]); !ok {
					continue
				}
			}
			block := pyBlock{class: true, end: s.blockEnd(h.lastIdx, indentWidth(line)), typeIdx: -1}
			if parent == nil {
				t := s.class(i, h, block.end, line[m[4]:m[5]])
				s.mod.Symbols = append(s.mod.Symbols, model.TypeSym(t))
				block.typeIdx = len(s.mod.Symbols) - 1
			} else {
				block.ignored = true
			}
			stack = append(stack, block)
			i = h.lastIdx
			continue
		}

		if parent == nil && indentWidth(line) == 0 {
			i = s.moduleStatement(i)
			line = s.lines[i]
		}
		open = updateTriple(line, "")
	}
}

// header reads a parenthesized header starting at column col of line idx,
// following it across lines until the parentheses balance.
func (s *pyScanner) header(idx, col int) (pyHeader, bool) {
	sc := bracketScanner{comment: "#"}
	var buf strings.Builder
	for j := idx; j < len(s.lines); j++ {
		chunk := s.lines[j]
		if j == idx {
			chunk = chunk[col:]
		}
		if end := sc.feed(chunk); end >= 0 {
			buf.WriteString(chunk[:end])
			inner := buf.String()
			return pyHeader{
				inner:   inner[1 : len(inner)-1],
				tail:    stripPyComment(chunk[end:]),
				lastIdx: j,
			}, true
		}
		buf.WriteString(chunk)
		buf.WriteByte('\n')
	}
	return pyHeader{}, false
}

// blockEnd finds the block that starts after line headerIdx: it ends just
// before the first following non-blank line, comments included, indented
// no deeper than indent, or at end of file.
func (s *pyScanner) blockEnd(headerIdx, indent int) int {
	open := ""
	for j := headerIdx + 1; j < len(s.lines); j++ {
		line := s.lines[j]
		if open != "" {
			open = updateTriple(line, open)
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if indentWidth(line) <= indent {
			return j - 1
		}
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		open = updateTriple(line, "")
	}
	return len(s.lines) - 1
}

func (s *pyScanner) function(idx int, h pyHeader, end int, name string, async, method bool) model.FunctionSymbol {
	decorators := s.decorators(idx)
	static := decorators["staticmethod"] || decorators["classmethod"]

	params := parsePyParams(h.inner)
	if method && !decorators["staticmethod"] && len(params) > 0 {
		if first := params[0].Name; first == "self" || first == "cls" {
			params = params[1:]
		}
	}

	fn := model.FunctionSymbol{
		Name:       name,
		Parameters: params,
		ReturnType: pyReturnType(h.tail),
		Async:      async,
		Generator:  s.hasYield(h.lastIdx+1, end),
		Static:     method && static,
		Visibility: pyVisibility(name),
		Comments:   s.docstring(h.lastIdx, end, h.tail),
		StartLine:  idx + 1,
		EndLine:    end + 1,
	}
	return fn
}

func (s *pyScanner) method(typeIdx, idx int, h pyHeader, end int, name string, async bool) {
	t := s.mod.Symbols[typeIdx].Type
	fn := s.function(idx, h, end, name, async, true)
	if name != "__init__" {
		t.Methods = append(t.Methods, fn)
		return
	}
	t.Constructor = &fn

	seen := make(map[string]bool, len(t.Properties))
	for _, p := range t.Properties {
		seen[p.Name] = true
	}
	for j := h.lastIdx + 1; j <= end; j++ {
		m := pySelfAttrRe.FindStringSubmatch(s.lines[j])
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		t.Properties = append(t.Properties, model.Property{
			Name:       m[1],
			Type:       strings.TrimSpace(m[2]),
			Visibility: pyVisibility(m[1]),
		})
	}
}

func (s *pyScanner) class(idx int, h pyHeader, end int, name string) model.TypeSymbol {
	t := model.TypeSymbol{
		Name:       name,
		Kind:       model.TypeKindClass,
		Methods:    []model.FunctionSymbol{},
		Properties: s.classAttributes(h.lastIdx, end),
		Comments:   s.docstring(h.lastIdx, end, h.tail),
		StartLine:  idx + 1,
		EndLine:    end + 1,
	}
	for _, base := range splitTopLevel(h.inner, ',') {
		base = strings.TrimSpace(base)
		if base == "" || indexTopLevel(base, '=') >= 0 {
			continue
		}
		t.SuperType = model.Ptr(base)
		break
	}
	return t
}

// classAttributes collects assignments directly in the class body.
// Annotated names are instance fields; bare assignments are class-level.
func (s *pyScanner) classAttributes(headerIdx, end int) []model.Property {
	props := []model.Property{}
	bodyIndent := -1
	open := ""
	for j := headerIdx + 1; j <= end && j < len(s.lines); j++ {
		line := s.lines[j]
		if open != "" {
			open = updateTriple(line, open)
			continue
		}
		open = updateTriple(line, "")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if bodyIndent < 0 {
			bodyIndent = indentWidth(line)
		}
		if indentWidth(line) != bodyIndent {
			continue
		}
		trimmed = stripPyComment(trimmed)
		if m := pyAnnotatedRe.FindStringSubmatch(trimmed); m != nil && !pyKeywords[m[1]] {
			props = append(props, model.Property{
				Name:       m[1],
				Type:       m[2],
				Visibility: pyVisibility(m[1]),
			})
			continue
		}
		if m := pyAssignedRe.FindStringSubmatch(trimmed); m != nil {
			props = append(props, model.Property{
				Name:       m[1],
				Static:     true,
				Visibility: pyVisibility(m[1]),
			})
		}
	}
	return props
}

func (s *pyScanner) decorators(idx int) map[string]bool {
	out := make(map[string]bool)
	for k := idx - 1; k >= 0; k-- {
		m := pyDecoratorRe.FindStringSubmatch(s.lines[k])
		if m == nil {
			break
		}
		out[m[1]] = true
	}
	return out
}

func (s *pyScanner) hasYield(from, to int) bool {
	for j := from; j <= to && j < len(s.lines); j++ {
		if pyYieldRe.MatchString(stripPyComment(s.lines[j])) {
			return true
		}
	}
	return false
}

// docstring returns the triple-quoted block opening the body, if any. An
// unterminated block runs to end of file.
func (s *pyScanner) docstring(headerIdx, end int, tail string) *string {
	// One-line bodies: def f(): """doc"""
	first := ""
	firstIdx := -1
	if c := indexTopLevel(tail, ':'); c >= 0 && strings.TrimSpace(tail[c+1:]) != "" {
		first, firstIdx = strings.TrimSpace(tail[c+1:]), headerIdx
	} else {
		for j := headerIdx + 1; j <= end && j < len(s.lines); j++ {
			if !isBlank(s.lines[j]) {
				first, firstIdx = strings.TrimSpace(s.lines[j]), j
				break
			}
		}
	}
	if firstIdx < 0 {
		return nil
	}

	first = strings.TrimLeft(first, "rRuUbB")
	var marker string
	switch {
	case strings.HasPrefix(first, `"""`):
		marker = `"""`
	case strings.HasPrefix(first, `'''`):
		marker = `'''`
	default:
		return nil
	}

	rest := first[3:]
	if k := strings.Index(rest, marker); k >= 0 {
		return model.Ptr(strings.TrimSpace(rest[:k]))
	}
	parts := []string{strings.TrimSpace(rest)}
	for j := firstIdx + 1; j < len(s.lines); j++ {
		line := s.lines[j]
		if k := strings.Index(line, marker); k >= 0 {
			parts = append(parts, strings.TrimSpace(line[:k]))
			break
		}
		parts = append(parts, strings.TrimSpace(line))
	}
	return model.Ptr(strings.TrimSpace(strings.Join(parts, "\n")))
}

// moduleStatement handles imports and __all__ at module level, returning
// the index of the statement's last line.
func (s *pyScanner) moduleStatement(idx int) int {
	line := stripPyComment(s.lines[idx])
	last := idx

	// Backslash continuations and open parentheses extend the statement.
	sc := bracketScanner{comment: "#"}
	text := line
	depthOpen := sc.feed(line) < 0 && sc.depth > 0
	for (strings.HasSuffix(strings.TrimSpace(text), "\\") || depthOpen) && last+1 < len(s.lines) {
		last++
		next := stripPyComment(s.lines[last])
		text = strings.TrimSuffix(strings.TrimSpace(text), "\\") + " " + strings.TrimSpace(next)
		depthOpen = sc.feed(next) < 0 && sc.depth > 0
	}
	text = strings.TrimSpace(text)

	switch {
	case pyFromRe.MatchString(text):
		m := pyFromRe.FindStringSubmatch(text)
		s.fromImport(idx, m[1], m[2])
	case pyImportRe.MatchString(text):
		s.plainImport(idx, pyImportRe.FindStringSubmatch(text)[1])
	case pyAllRe.MatchString(text):
		s.allExports(idx, text[len(pyAllRe.FindString(text)):])
	default:
		return idx
	}
	return last
}

func (s *pyScanner) plainImport(idx int, list string) {
	for _, part := range strings.Split(list, ",") {
		name, alias := splitPyAlias(part)
		if name == "" {
			continue
		}
		binding := model.ImportBinding{Local: name, Kind: model.BindingNamespace}
		if alias != "" {
			binding.Local = alias
			binding.Imported = model.Ptr(name)
		}
		s.mod.Imports = append(s.mod.Imports, model.ImportEdge{
			Source:    name,
			Bindings:  []model.ImportBinding{binding},
			StartLine: idx + 1,
		})
	}
}

func (s *pyScanner) fromImport(idx int, source, list string) {
	list = strings.TrimSpace(list)
	list = strings.TrimSuffix(strings.TrimPrefix(list, "("), ")")
	edge := model.ImportEdge{
		Source:    source,
		Bindings:  []model.ImportBinding{},
		StartLine: idx + 1,
	}
	for _, part := range strings.Split(list, ",") {
		name, alias := splitPyAlias(part)
		switch {
		case name == "":
			continue
		case name == "*":
			edge.Bindings = append(edge.Bindings, model.ImportBinding{Local: "*", Kind: model.BindingNamespace})
		case alias != "":
			edge.Bindings = append(edge.Bindings, model.ImportBinding{
				Local:    alias,
				Kind:     model.BindingNamed,
				Imported: model.Ptr(name),
			})
		default:
			edge.Bindings = append(edge.Bindings, model.ImportBinding{Local: name, Kind: model.BindingNamed})
		}
	}
	s.mod.Imports = append(s.mod.Imports, edge)
}

func (s *pyScanner) allExports(idx int, value string) {
	value = strings.TrimSpace(value)
	value = strings.TrimLeft(value, "[(")
	value = strings.TrimRight(value, "])")
	for _, item := range splitTopLevel(value, ',') {
		name := strings.Trim(strings.TrimSpace(item), `"'`)
		if name == "" {
			continue
		}
		s.mod.Exports = append(s.mod.Exports, model.ExportEdge{
			Name:      name,
			Kind:      model.ExportNamed,
			StartLine: idx + 1,
		})
	}
}

// parsePyParams splits a def parameter list into name: type = default parts.
func parsePyParams(inner string) []model.Parameter {
	params := []model.Parameter{}
	for _, raw := range splitTopLevel(stripPyCommentLines(inner), ',') {
		part := strings.TrimSpace(raw)
		if part == "" || part == "*" || part == "/" {
			continue
		}
		var p model.Parameter
		if eq := indexTopLevel(part, '='); eq >= 0 {
			p.Default = model.Ptr(strings.TrimSpace(part[eq+1:]))
			p.Optional = true
			part = strings.TrimSpace(part[:eq])
		}
		if colon := indexTopLevel(part, ':'); colon >= 0 {
			p.Type = strings.TrimSpace(part[colon+1:])
			part = strings.TrimSpace(part[:colon])
		}
		p.Name = part
		params = append(params, p)
	}
	return params
}

// pyReturnType reads "-> T:" from the text following a def's parameters.
func pyReturnType(tail string) string {
	tail = strings.TrimSpace(tail)
	if !strings.HasPrefix(tail, "->") {
		return ""
	}
	tail = tail[2:]
	if c := indexTopLevel(tail, ':'); c >= 0 {
		tail = tail[:c]
	}
	return strings.TrimSpace(tail)
}

func pyVisibility(name string) model.Visibility {
	switch {
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return model.VisibilityPublic
	case strings.HasPrefix(name, "__"):
		return model.VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return model.VisibilityProtected
	}
	return model.VisibilityPublic
}

func splitPyAlias(part string) (name, alias string) {
	fields := strings.Fields(part)
	switch {
	case len(fields) == 0:
		return "", ""
	case len(fields) >= 3 && fields[1] == "as":
		return fields[0], fields[2]
	}
	return fields[0], ""
}

// stripPyComment drops a trailing # comment that is not inside a string.
func stripPyComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return line[:i]
		}
	}
	return line
}

func stripPyCommentLines(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = stripPyComment(l)
	}
	return strings.Join(lines, " ")
}

// updateTriple returns the triple-quote marker still open after line, given
// the marker open before it ("" for none).
func updateTriple(line, open string) string {
	for {
		if open != "" {
			k := strings.Index(line, open)
			if k < 0 {
				return open
			}
			line = line[k+3:]
			open = ""
			continue
		}
		k, marker := -1, ""
		for _, m := range []string{`"""`, `'''`} {
			if i := strings.Index(line, m); i >= 0 && (k < 0 || i < k) {
				k, marker = i, m
			}
		}
		if k < 0 {
			return ""
		}
		if h := strings.IndexByte(line, '#'); h >= 0 && h < k {
			return ""
		}
		open = marker
		line = line[k+3:]
	}
}

// mixedIndentLine returns the 1-based line whose indentation mixes tabs and
// spaces, or uses a different character than the first indented line.
func mixedIndentLine(lines []string) int {
	var style byte
	for i, line := range lines {
		if isBlank(line) {
			continue
		}
		lead := line[:indentWidth(line)]
		if lead == "" {
			continue
		}
		if strings.Contains(lead, " ") && strings.Contains(lead, "\t") {
			return i + 1
		}
		if style == 0 {
			style = lead[0]
			continue
		}
		if lead[0] != style {
			return i + 1
		}
	}
	return 0
}
