package extract

import (
	"context"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/dusk-indust/autodocs/internal/model"
)

const goIdent = `[\p{L}_][\p{L}\p{N}_]*`

var (
	goFuncRe        = regexp.MustCompile(`^func\s*[(\p{L}_]`)
	goTypeGroupRe   = regexp.MustCompile(`^type\s*\(`)
	goTypeRe        = regexp.MustCompile(`^type\s+`)
	goTypeSpecRe    = regexp.MustCompile(`^(` + goIdent + `)\s*(\[[^\]]*\s[^\]]*\])?\s*(=)?\s*(.*)$`)
	goImportGroupRe = regexp.MustCompile(`^import\s*\(`)
	goImportSpecRe  = regexp.MustCompile(`^\s*(?:import\s+)?(?:(` + goIdent + `|\.|_)\s+)?["` + "`]([^\"`]*)[\"`]")
	goValueGroupRe  = regexp.MustCompile(`^(?:var|const)\s*\(`)
	goValueRe       = regexp.MustCompile(`^(?:var|const)\s+`)
	goNameListRe    = regexp.MustCompile(`^(` + goIdent + `(?:\s*,\s*` + goIdent + `)*)`)
	goFieldRe       = regexp.MustCompile(`^(` + goIdent + `(?:\s*,\s*` + goIdent + `)*)\s+(\S.*)$`)
	goIfaceMethodRe = regexp.MustCompile(`^` + goIdent + `\s*\(`)
	goIdentRe       = regexp.MustCompile(`^` + goIdent)
	goVersionElemRe = regexp.MustCompile(`^v[0-9]+$`)
)

// goExtractor segments Go source by counting braces. With Strict set the
// tree-sitter Go grammar rejects input that does not parse and an unclosed
// block is an error instead of running to end of file.
type goExtractor struct {
	strict bool
	lang   *tree_sitter.Language
}

func newGoExtractor(opts Options) *goExtractor {
	return &goExtractor{
		strict: opts.Strict,
		lang:   tree_sitter.NewLanguage(tree_sitter_go.Language()),
	}
}

func (e *goExtractor) Grammars() []model.Grammar {
	return []model.Grammar{model.GrammarGo}
}

func (e *goExtractor) Extract(_ context.Context, path string, source []byte, grammar model.Grammar) (model.Module, error) {
	if e.strict {
		if err := verifySyntax(e.lang, path, grammar, source); err != nil {
			return model.Module{}, err
		}
	}

	s := &goScanner{
		lines: splitLines(source),
		mod: model.Module{
			Path:    path,
			Grammar: grammar,
			RawText: string(source),
		},
	}
	s.scan()

	if e.strict && s.unclosed > 0 {
		return model.Module{}, &GrammarError{
			Path:    path,
			Grammar: grammar,
			Line:    s.unclosed,
			Message: "block is never closed",
		}
	}
	return s.mod, nil
}

type goScanner struct {
	lines    []string
	mod      model.Module
	unclosed int // 1-based header line of the first block that never closes
}

func (s *goScanner) scan() {
	for i := 0; i < len(s.lines); {
		line := s.lines[i]
		switch {
		case goFuncRe.MatchString(line):
			i = s.funcDecl(i) + 1
		case goTypeGroupRe.MatchString(line):
			i = s.group(i, func(j int, item string) {
				s.typeSpec(j, item)
			}) + 1
		case goTypeRe.MatchString(line):
			s.typeSpec(i, strings.TrimSpace(line[len("type"):]))
			i = s.statementEnd(i) + 1
		case goImportGroupRe.MatchString(line):
			i = s.group(i, func(j int, item string) {
				s.importSpec(j, item)
			}) + 1
		case strings.HasPrefix(line, "import"):
			s.importSpec(i, line)
			i++
		case goValueGroupRe.MatchString(line):
			i = s.group(i, func(j int, item string) {
				s.valueSpec(j, item)
			}) + 1
		case goValueRe.MatchString(line):
			s.valueSpec(i, goValueRe.ReplaceAllString(line, ""))
			i = s.statementEnd(i) + 1
		default:
			i = s.statementEnd(i) + 1
		}
	}
	s.attachMethods()
}

// funcDecl records the function whose header starts on row and returns the
// row its body closes on.
func (s *goScanner) funcDecl(row int) int {
	c := &goCursor{lines: s.lines, row: row}
	depth, last := 0, row
	sawParams := false
	bodyRow, bodyCol := -1, -1
scan:
	for {
		ch, r, col, ok := c.next()
		if !ok {
			break
		}
		if r > last && depth == 0 && sawParams {
			break
		}
		last = r
		switch ch {
		case '(', '[':
			depth++
		case ')':
			depth--
			if depth == 0 {
				sawParams = true
			}
		case ']', '}':
			depth--
		case '{':
			if depth == 0 && !isTypeBrace(s.lines[r][:col]) {
				bodyRow, bodyCol = r, col
				break scan
			}
			depth++
		}
	}

	var header string
	end := last
	if bodyRow >= 0 {
		header = s.span(row, bodyRow, bodyCol)
		end = s.braceEnd(bodyRow, bodyCol)
		if end < 0 {
			if s.unclosed == 0 {
				s.unclosed = row + 1
			}
			end = len(s.lines) - 1
		}
	} else {
		header = s.span(row, last, len(s.lines[last]))
	}

	sig, ok := parseGoSignature(strings.TrimSpace(strings.TrimPrefix(header, "func")))
	if !ok {
		return end
	}
	fn := model.FunctionSymbol{
		Name:       sig.name,
		Parameters: sig.params,
		ReturnType: sig.results,
		Visibility: goVisibility(sig.name),
		Receiver:   sig.receiver,
		Comments:   s.leadingComments(row),
		StartLine:  row + 1,
		EndLine:    end + 1,
	}
	s.mod.Symbols = append(s.mod.Symbols, model.FunctionSym(fn))
	if sig.receiver == "" && model.IsExportedName(sig.name) {
		s.mod.Exports = append(s.mod.Exports, model.ExportEdge{
			Name:      sig.name,
			Kind:      model.ExportFunction,
			StartLine: row + 1,
		})
	}
	return end
}

// span joins the code on rows from..to, stopping before column endCol of
// the last row. Line comments are dropped.
func (s *goScanner) span(from, to, endCol int) string {
	var parts []string
	for r := from; r <= to; r++ {
		line := s.lines[r]
		if r == to {
			line = line[:endCol]
		}
		parts = append(parts, strings.TrimSpace(goStripComment(line)))
	}
	return strings.Join(parts, " ")
}

// braceEnd returns the row on which the brace opened at (row, col) is
// closed, or -1 if it never is.
func (s *goScanner) braceEnd(row, col int) int {
	c := &goCursor{lines: s.lines, row: row, col: col}
	depth := 0
	for {
		ch, r, _, ok := c.next()
		if !ok {
			return -1
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return r
			}
		}
	}
}

// statementEnd returns the last row belonging to the statement starting on
// row, following open brackets and multi-line literals.
func (s *goScanner) statementEnd(row int) int {
	c := &goCursor{lines: s.lines, row: row}
	depth, last := 0, row
	for {
		ch, r, _, ok := c.next()
		if !ok {
			return len(s.lines) - 1
		}
		if r > last && depth <= 0 {
			return r - 1
		}
		last = r
		switch ch {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
}

// group calls fn for each item of a parenthesized declaration group that
// starts on row and returns the row of the closing parenthesis.
func (s *goScanner) group(row int, fn func(j int, item string)) int {
	depth := bracketDelta(goStripComment(s.lines[row]))
	for j := row + 1; j < len(s.lines); j++ {
		code := goStripComment(s.lines[j])
		trimmed := strings.TrimSpace(code)
		if depth == 1 && trimmed != "" {
			if strings.HasPrefix(trimmed, ")") {
				return j
			}
			fn(j, trimmed)
		}
		depth += bracketDelta(code)
		if depth <= 0 {
			return j
		}
	}
	return len(s.lines) - 1
}

func (s *goScanner) typeSpec(row int, spec string) {
	m := goTypeSpecRe.FindStringSubmatch(goStripComment(spec))
	if m == nil {
		return
	}
	name, alias, rest := m[1], m[3] == "=", strings.TrimSpace(m[4])

	if alias {
		if model.IsExportedName(name) {
			s.mod.Exports = append(s.mod.Exports, model.ExportEdge{
				Name:      name,
				Kind:      model.ExportTypeAlias,
				TypeText:  model.Ptr(rest),
				StartLine: row + 1,
			})
		}
		return
	}

	t := model.TypeSymbol{
		Name:       name,
		Kind:       model.TypeKindDefined,
		Methods:    []model.FunctionSymbol{},
		Properties: []model.Property{},
		Comments:   s.leadingComments(row),
		StartLine:  row + 1,
		EndLine:    row + 1,
	}
	switch {
	case strings.HasPrefix(rest, "struct"):
		t.Kind = model.TypeKindStruct
	case strings.HasPrefix(rest, "interface"):
		t.Kind = model.TypeKindInterface
		t.InterfaceLike = true
	}

	if t.Kind != model.TypeKindDefined {
		if col := strings.Index(s.lines[row], "{"); col >= 0 {
			end := s.braceEnd(row, col)
			if end < 0 {
				if s.unclosed == 0 {
					s.unclosed = row + 1
				}
				end = len(s.lines) - 1
			}
			t.EndLine = end + 1
			if end == row {
				inner := s.lines[row][col+1:]
				if k := strings.LastIndex(inner, "}"); k >= 0 {
					inner = inner[:k]
				}
				for _, member := range strings.Split(inner, ";") {
					s.member(&t, row, strings.TrimSpace(member))
				}
			} else {
				depth := 0
				for j := row + 1; j < end; j++ {
					code := goStripComment(s.lines[j])
					if depth == 0 {
						s.member(&t, j, strings.TrimSpace(code))
					}
					depth += bracketDelta(code)
				}
			}
		}
	}

	s.mod.Symbols = append(s.mod.Symbols, model.TypeSym(t))
	if model.IsExportedName(name) {
		s.mod.Exports = append(s.mod.Exports, model.ExportEdge{
			Name:      name,
			Kind:      model.ExportType,
			StartLine: row + 1,
		})
	}
}

// member records one struct field or interface element.
func (s *goScanner) member(t *model.TypeSymbol, row int, text string) {
	if text == "" {
		return
	}
	if t.Kind == model.TypeKindInterface {
		if goIfaceMethodRe.MatchString(text) {
			if sig, ok := parseGoSignature(text); ok {
				t.Methods = append(t.Methods, model.FunctionSymbol{
					Name:       sig.name,
					Parameters: sig.params,
					ReturnType: sig.results,
					Visibility: goVisibility(sig.name),
					Comments:   s.leadingComments(row),
					StartLine:  row + 1,
					EndLine:    row + 1,
				})
			}
			return
		}
		if t.SuperType == nil {
			first := strings.TrimSpace(strings.Split(text, "|")[0])
			t.SuperType = model.Ptr(strings.TrimPrefix(first, "~"))
		}
		return
	}

	// Struct field: drop the tag, then either "A, B T" or an embedded type.
	if k := strings.IndexAny(text, "`\""); k >= 0 {
		text = strings.TrimSpace(text[:k])
	}
	m := goFieldRe.FindStringSubmatch(text)
	if m == nil {
		if t.SuperType == nil {
			t.SuperType = model.Ptr(strings.TrimPrefix(text, "*"))
		}
		return
	}
	typ := strings.TrimSpace(m[2])
	if strings.HasSuffix(typ, "{") {
		typ = strings.TrimSpace(strings.TrimSuffix(typ, "{"))
	}
	for _, name := range strings.Split(m[1], ",") {
		name = strings.TrimSpace(name)
		t.Properties = append(t.Properties, model.Property{
			Name:       name,
			Type:       typ,
			Visibility: goVisibility(name),
		})
	}
}

func (s *goScanner) importSpec(row int, text string) {
	m := goImportSpecRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	alias, source := m[1], m[2]
	binding := model.ImportBinding{Local: goPackageName(source), Kind: model.BindingNamespace}
	if alias != "" {
		binding.Imported = model.Ptr(binding.Local)
		binding.Local = alias
	}
	s.mod.Imports = append(s.mod.Imports, model.ImportEdge{
		Source:    source,
		Bindings:  []model.ImportBinding{binding},
		StartLine: row + 1,
	})
}

func (s *goScanner) valueSpec(row int, text string) {
	m := goNameListRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return
	}
	for _, name := range strings.Split(m[1], ",") {
		name = strings.TrimSpace(name)
		if !model.IsExportedName(name) {
			continue
		}
		s.mod.Exports = append(s.mod.Exports, model.ExportEdge{
			Name:      name,
			Kind:      model.ExportVariable,
			StartLine: row + 1,
		})
	}
}

// attachMethods copies every receiver function into the method list of the
// type its receiver names. Matching is by name only.
func (s *goScanner) attachMethods() {
	types := make(map[string]*model.TypeSymbol)
	for _, sym := range s.mod.Symbols {
		if sym.Type != nil {
			types[sym.Type.Name] = sym.Type
		}
	}
	for _, sym := range s.mod.Symbols {
		if sym.Function == nil || sym.Function.Receiver == "" {
			continue
		}
		if t, ok := types[sym.Function.Receiver]; ok {
			t.Methods = append(t.Methods, sym.Function.Clone())
		}
	}
}

// leadingComments collects the // and /* */ comments directly above row.
// Blank lines are skipped; any other line ends the block.
func (s *goScanner) leadingComments(row int) *string {
	var parts []string
	for k := row - 1; k >= 0; k-- {
		t := strings.TrimSpace(s.lines[k])
		switch {
		case t == "":
			continue
		case strings.HasPrefix(t, "//"):
			parts = append(parts, stripLineComment(t))
			continue
		case strings.HasSuffix(t, "*/"):
			for ; k >= 0; k-- {
				l := strings.TrimSpace(s.lines[k])
				if start := strings.Index(l, "/*"); start >= 0 {
					parts = append(parts, stripBlockComment(l[start+2:]))
					break
				}
				parts = append(parts, stripBlockComment(l))
			}
			continue
		}
		break
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	// Comment markers on their own line leave empty edges.
	for len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return nil
	}
	return model.Ptr(strings.Join(parts, "\n"))
}

type goSignature struct {
	receiver string
	name     string
	params   []model.Parameter
	results  string
}

// parseGoSignature parses "[(recv)] Name[TypeParams](params) results".
func parseGoSignature(text string) (goSignature, bool) {
	var sig goSignature
	if strings.HasPrefix(text, "(") {
		end := matchBracket(text)
		if end < 0 {
			return sig, false
		}
		sig.receiver = receiverType(text[1 : end-1])
		text = strings.TrimSpace(text[end:])
	}

	sig.name = goIdentRe.FindString(text)
	if sig.name == "" {
		return sig, false
	}
	text = strings.TrimSpace(text[len(sig.name):])

	if strings.HasPrefix(text, "[") {
		end := matchBracket(text)
		if end < 0 {
			return sig, false
		}
		text = strings.TrimSpace(text[end:])
	}
	if !strings.HasPrefix(text, "(") {
		return sig, false
	}
	end := matchBracket(text)
	if end < 0 {
		return sig, false
	}
	sig.params = parseGoParams(text[1 : end-1])
	sig.results = normalizeResults(strings.TrimSpace(text[end:]))
	return sig, true
}

// parseGoParams handles grouped names ("a, b int"), variadics and unnamed
// parameter lists.
func parseGoParams(inner string) []model.Parameter {
	var parts []string
	for _, p := range splitTopLevel(inner, ',') {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			parts = append(parts, p)
		}
	}

	named := false
	for _, p := range parts {
		if _, _, ok := splitGoParam(p); ok {
			named = true
			break
		}
	}

	params := make([]model.Parameter, 0, len(parts))
	if !named {
		for _, p := range parts {
			params = append(params, model.Parameter{Name: "_", Type: p})
		}
		return params
	}

	// Names without a type take the type of the next typed entry.
	var pending []string
	for _, p := range parts {
		name, typ, ok := splitGoParam(p)
		if !ok {
			pending = append(pending, p)
			continue
		}
		for _, n := range pending {
			params = append(params, model.Parameter{Name: n, Type: typ})
		}
		pending = pending[:0]
		params = append(params, model.Parameter{Name: name, Type: typ})
	}
	for _, n := range pending {
		params = append(params, model.Parameter{Name: n})
	}
	return params
}

var goTypeKeywords = map[string]bool{
	"chan": true, "<-chan": true, "func": true, "map": true, "struct": true, "interface": true,
}

func splitGoParam(p string) (name, typ string, ok bool) {
	sp := indexTopLevel(p, ' ')
	if sp < 0 {
		return "", "", false
	}
	name = p[:sp]
	if goTypeKeywords[name] || !goIdentRe.MatchString(name) || len(goIdentRe.FindString(name)) != len(name) {
		return "", "", false
	}
	return name, strings.TrimSpace(p[sp+1:]), true
}

// normalizeResults keeps multiple results as one parenthesized string.
func normalizeResults(results string) string {
	if !strings.HasPrefix(results, "(") {
		return strings.Join(strings.Fields(results), " ")
	}
	end := matchBracket(results)
	if end < 0 {
		return results
	}
	var items []string
	for _, item := range splitTopLevel(results[1:end-1], ',') {
		if item = strings.Join(strings.Fields(item), " "); item != "" {
			items = append(items, item)
		}
	}
	return "(" + strings.Join(items, ", ") + ")"
}

func receiverType(recv string) string {
	fields := strings.Fields(recv)
	if len(fields) == 0 {
		return ""
	}
	typ := strings.TrimPrefix(fields[len(fields)-1], "*")
	if k := strings.Index(typ, "["); k >= 0 {
		typ = typ[:k]
	}
	return typ
}

func matchBracket(s string) int {
	sc := bracketScanner{comment: "//"}
	return sc.feed(s)
}

func isTypeBrace(prefix string) bool {
	t := strings.TrimSpace(prefix)
	return strings.HasSuffix(t, "interface") || strings.HasSuffix(t, "struct")
}

// goPackageName guesses the package name of an import path from its last
// element, skipping a major-version suffix.
func goPackageName(path string) string {
	elems := strings.Split(path, "/")
	name := elems[len(elems)-1]
	if goVersionElemRe.MatchString(name) && len(elems) > 1 {
		name = elems[len(elems)-2]
	}
	return name
}

func goVisibility(name string) model.Visibility {
	if model.IsExportedName(name) {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

func stripLineComment(t string) string {
	t = strings.TrimPrefix(t, "//")
	return strings.TrimRight(strings.TrimPrefix(t, " "), " \t")
}

func stripBlockComment(l string) string {
	l = strings.TrimSpace(strings.TrimSuffix(l, "*/"))
	l = strings.TrimPrefix(l, "/*")
	if strings.HasPrefix(l, "*") {
		l = strings.TrimSpace(l[1:])
	}
	return strings.TrimSpace(l)
}

// goStripComment drops a trailing // comment outside string literals.
func goStripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}

// bracketDelta is the net bracket depth change of one line of code.
func bracketDelta(code string) int {
	delta := 0
	var quote byte
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case quote != 0:
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{':
			delta++
		case c == ')' || c == ']' || c == '}':
			delta--
		}
	}
	return delta
}

// goCursor walks the code bytes of Go source across lines, skipping
// comments and string, raw string and rune literals.
type goCursor struct {
	lines    []string
	row, col int
}

func (c *goCursor) next() (ch byte, row, col int, ok bool) {
	for c.row < len(c.lines) {
		line := c.lines[c.row]
		if c.col >= len(line) {
			c.row++
			c.col = 0
			continue
		}
		b := line[c.col]
		switch {
		case b == '/' && c.col+1 < len(line) && line[c.col+1] == '/':
			c.row++
			c.col = 0
			continue
		case b == '/' && c.col+1 < len(line) && line[c.col+1] == '*':
			c.skipPast("*/", c.col+2)
			continue
		case b == '`':
			c.skipPast("`", c.col+1)
			continue
		case b == '"' || b == '\'':
			c.skipQuoted(b)
			continue
		}
		row, col = c.row, c.col
		c.col++
		return b, row, col, true
	}
	return 0, 0, 0, false
}

// skipPast moves the cursor just past the next marker at or after column
// from, crossing lines as needed.
func (c *goCursor) skipPast(marker string, from int) {
	for c.row < len(c.lines) {
		line := c.lines[c.row]
		if from <= len(line) {
			if k := strings.Index(line[from:], marker); k >= 0 {
				c.col = from + k + len(marker)
				return
			}
		}
		c.row++
		from = 0
	}
	c.col = 0
}

// skipQuoted moves past an interpreted string or rune literal, which
// cannot span lines.
func (c *goCursor) skipQuoted(quote byte) {
	line := c.lines[c.row]
	for i := c.col + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case quote:
			c.col = i + 1
			return
		}
	}
	c.col = len(line)
}
