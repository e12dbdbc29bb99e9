package extract

import (
	"context"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/dusk-indust/autodocs/internal/model"
)

// ecmaExtractor walks a tree-sitter syntax tree for JavaScript and
// TypeScript. Both dialects share one walker; TypeScript-only node kinds
// simply never occur in JavaScript trees.
type ecmaExtractor struct {
	javascript *tree_sitter.Language
	typescript *tree_sitter.Language
	tsx        *tree_sitter.Language
}

func newECMAExtractor() *ecmaExtractor {
	return &ecmaExtractor{
		javascript: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
		typescript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		tsx:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
	}
}

func (e *ecmaExtractor) Grammars() []model.Grammar {
	return []model.Grammar{model.GrammarJavaScript, model.GrammarTypeScript}
}

func (e *ecmaExtractor) language(path string, grammar model.Grammar) *tree_sitter.Language {
	if grammar == model.GrammarJavaScript {
		return e.javascript
	}
	if strings.EqualFold(filepath.Ext(path), ".tsx") {
		return e.tsx
	}
	return e.typescript
}

func (e *ecmaExtractor) Extract(_ context.Context, path string, source []byte, grammar model.Grammar) (model.Module, error) {
	tree, err := parseTree(e.language(path, grammar), source)
	if err != nil {
		return model.Module{}, &GrammarError{Path: path, Grammar: grammar, Message: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return model.Module{}, &GrammarError{
			Path:    path,
			Grammar: grammar,
			Line:    firstErrorLine(root),
			Message: "syntax error",
		}
	}

	w := &ecmaWalker{
		source: source,
		mod: model.Module{
			Path:    path,
			Grammar: grammar,
			RawText: string(source),
		},
	}
	for _, stmt := range namedChildren(root) {
		w.statement(stmt)
	}
	return w.mod, nil
}

// declared is one name introduced by a declaration, as an export would see it.
type declared struct {
	name     string
	kind     model.ExportKind
	typeText *string
}

// ecmaWalker accumulates the Module for a single file.
type ecmaWalker struct {
	source []byte
	mod    model.Module
}

func (w *ecmaWalker) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(w.source)
}

func (w *ecmaWalker) statement(node *tree_sitter.Node) {
	switch node.Kind() {
	case "import_statement":
		w.importStatement(node)
	case "export_statement":
		w.exportStatement(node)
	case "ambient_declaration":
		for _, child := range namedChildren(node) {
			w.declaration(child)
		}
	default:
		w.declaration(node)
	}
}

// declaration records the symbols a declaration introduces and reports the
// names it declares. Nodes that declare nothing return nil.
func (w *ecmaWalker) declaration(node *tree_sitter.Node) []declared {
	switch node.Kind() {
	case "function_declaration", "generator_function_declaration":
		name := w.text(node.ChildByFieldName("name"))
		if name == "" {
			return nil
		}
		fn := w.function(node, name, node)
		fn.Comments = w.leadingComment(node)
		w.mod.Symbols = append(w.mod.Symbols, model.FunctionSym(fn))
		return []declared{{name: name, kind: model.ExportFunction}}

	case "class_declaration", "abstract_class_declaration", "class":
		t, ok := w.class(node, "")
		if !ok {
			return nil
		}
		w.mod.Symbols = append(w.mod.Symbols, model.TypeSym(t))
		return []declared{{name: t.Name, kind: model.ExportType}}

	case "interface_declaration":
		t, ok := w.iface(node)
		if !ok {
			return nil
		}
		w.mod.Symbols = append(w.mod.Symbols, model.TypeSym(t))
		return []declared{{name: t.Name, kind: model.ExportType}}

	case "enum_declaration":
		t, ok := w.enum(node)
		if !ok {
			return nil
		}
		w.mod.Symbols = append(w.mod.Symbols, model.TypeSym(t))
		return []declared{{name: t.Name, kind: model.ExportType}}

	case "type_alias_declaration":
		name := w.text(node.ChildByFieldName("name"))
		if name == "" {
			return nil
		}
		return []declared{{
			name:     name,
			kind:     model.ExportTypeAlias,
			typeText: model.Ptr(w.text(node.ChildByFieldName("value"))),
		}}

	case "lexical_declaration", "variable_declaration":
		return w.variables(node)
	}
	return nil
}

// variables records function-valued declarators as functions and reports
// every simple declarator name.
func (w *ecmaWalker) variables(node *tree_sitter.Node) []declared {
	var out []declared
	for _, child := range namedChildren(node) {
		if child.Kind() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		name := w.text(nameNode)

		value := child.ChildByFieldName("value")
		if value != nil && isFunctionValue(value) {
			fn := w.function(value, name, child)
			fn.StartLine = startLine(node)
			fn.Comments = w.leadingComment(node)
			w.mod.Symbols = append(w.mod.Symbols, model.FunctionSym(fn))
			out = append(out, declared{name: name, kind: model.ExportFunction})
			continue
		}
		out = append(out, declared{name: name, kind: model.ExportVariable})
	}
	return out
}

func isFunctionValue(n *tree_sitter.Node) bool {
	switch n.Kind() {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

// function builds a FunctionSymbol from any function-like node. span is the
// node whose extent becomes the symbol's line range.
func (w *ecmaWalker) function(node *tree_sitter.Node, name string, span *tree_sitter.Node) model.FunctionSymbol {
	fn := model.FunctionSymbol{
		Name:       name,
		Parameters: w.parameters(node),
		ReturnType: w.typeAnnotation(node.ChildByFieldName("return_type")),
		Async:      hasToken(node, "async"),
		Generator:  strings.Contains(node.Kind(), "generator") || hasToken(node, "*"),
		StartLine:  startLine(span),
		EndLine:    endLine(span),
	}
	return fn
}

func (w *ecmaWalker) parameters(fnNode *tree_sitter.Node) []model.Parameter {
	// Arrow functions with a single bare parameter: x => x * 2.
	if single := fnNode.ChildByFieldName("parameter"); single != nil {
		return []model.Parameter{{Name: w.text(single)}}
	}

	params := []model.Parameter{}
	list := fnNode.ChildByFieldName("parameters")
	for _, p := range namedChildren(list) {
		switch p.Kind() {
		case "identifier":
			params = append(params, model.Parameter{Name: w.text(p)})

		case "assignment_pattern":
			params = append(params, model.Parameter{
				Name:     w.patternName(p.ChildByFieldName("left")),
				Default:  model.Ptr(w.text(p.ChildByFieldName("right"))),
				Optional: true,
			})

		case "object_pattern", "array_pattern", "rest_pattern":
			params = append(params, model.Parameter{Name: p.Kind()})

		case "required_parameter", "optional_parameter":
			pattern := p.ChildByFieldName("pattern")
			if pattern != nil && pattern.Kind() == "this" {
				continue
			}
			param := model.Parameter{
				Name:     w.patternName(pattern),
				Type:     w.typeAnnotation(p.ChildByFieldName("type")),
				Optional: p.Kind() == "optional_parameter",
			}
			if value := p.ChildByFieldName("value"); value != nil {
				param.Default = model.Ptr(w.text(value))
				param.Optional = true
			}
			params = append(params, param)
		}
	}
	return params
}

// patternName returns the identifier of a simple binding, or the pattern
// kind as a placeholder for destructuring and rest bindings.
func (w *ecmaWalker) patternName(n *tree_sitter.Node) string {
	if n == nil {
		return "parameter"
	}
	if n.Kind() == "identifier" {
		return w.text(n)
	}
	return n.Kind()
}

// typeAnnotation flattens a type annotation to a display string. The
// mapping is lossy: anything beyond primitives, references and arrays of
// those becomes "any".
func (w *ecmaWalker) typeAnnotation(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "type_annotation" {
		inner := namedChildren(n)
		if len(inner) == 0 {
			return ""
		}
		return w.flattenType(inner[0])
	}
	return w.flattenType(n)
}

func (w *ecmaWalker) flattenType(n *tree_sitter.Node) string {
	switch n.Kind() {
	case "predefined_type", "type_identifier", "nested_type_identifier":
		return w.text(n)
	case "generic_type":
		if name := n.ChildByFieldName("name"); name != nil {
			return w.text(name)
		}
	case "array_type":
		if inner := namedChildren(n); len(inner) > 0 {
			return w.flattenType(inner[0]) + "[]"
		}
	case "parenthesized_type":
		if inner := namedChildren(n); len(inner) > 0 {
			return w.flattenType(inner[0])
		}
	}
	return "any"
}

func (w *ecmaWalker) class(node *tree_sitter.Node, fallback string) (model.TypeSymbol, bool) {
	name := w.text(node.ChildByFieldName("name"))
	if name == "" {
		name = fallback
	}
	if name == "" {
		return model.TypeSymbol{}, false
	}
	t := model.TypeSymbol{
		Name:       name,
		Kind:       model.TypeKindClass,
		Methods:    []model.FunctionSymbol{},
		Properties: []model.Property{},
		SuperType:  w.superClass(node),
		Comments:   w.leadingComment(node),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	}

	for _, member := range namedChildren(node.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_definition", "method_signature", "abstract_method_signature":
			fn := w.method(member)
			if fn.Name == "constructor" {
				ctor := fn
				t.Constructor = &ctor
				continue
			}
			t.Methods = append(t.Methods, fn)

		case "field_definition", "public_field_definition":
			t.Properties = append(t.Properties, w.field(member))
		}
	}
	return t, true
}

func (w *ecmaWalker) superClass(node *tree_sitter.Node) *string {
	heritage := childOfKind(node, "class_heritage")
	if heritage == nil {
		return nil
	}
	// TypeScript wraps the base in extends_clause; JavaScript puts the
	// expression directly under class_heritage.
	if ext := childOfKind(heritage, "extends_clause"); ext != nil {
		if value := ext.ChildByFieldName("value"); value != nil {
			return model.Ptr(w.text(value))
		}
		if inner := namedChildren(ext); len(inner) > 0 {
			return model.Ptr(w.text(inner[0]))
		}
		return nil
	}
	for _, child := range namedChildren(heritage) {
		if child.Kind() == "implements_clause" {
			continue
		}
		return model.Ptr(w.text(child))
	}
	return nil
}

func (w *ecmaWalker) method(member *tree_sitter.Node) model.FunctionSymbol {
	nameNode := member.ChildByFieldName("name")
	fn := w.function(member, w.text(nameNode), member)
	fn.Static = hasToken(member, "static")
	fn.Visibility = w.memberVisibility(member, nameNode)
	fn.Comments = w.leadingComment(member)
	return fn
}

func (w *ecmaWalker) field(member *tree_sitter.Node) model.Property {
	nameNode := member.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = member.ChildByFieldName("property")
	}
	return model.Property{
		Name:       w.text(nameNode),
		Type:       w.typeAnnotation(member.ChildByFieldName("type")),
		Static:     hasToken(member, "static"),
		Visibility: w.memberVisibility(member, nameNode),
		Optional:   hasToken(member, "?"),
	}
}

func (w *ecmaWalker) memberVisibility(member, name *tree_sitter.Node) model.Visibility {
	if mod := childOfKind(member, "accessibility_modifier"); mod != nil {
		switch w.text(mod) {
		case "public":
			return model.VisibilityPublic
		case "private":
			return model.VisibilityPrivate
		case "protected":
			return model.VisibilityProtected
		}
	}
	if name != nil && name.Kind() == "private_property_identifier" {
		return model.VisibilityPrivate
	}
	return model.VisibilityUnspecified
}

func (w *ecmaWalker) iface(node *tree_sitter.Node) (model.TypeSymbol, bool) {
	name := w.text(node.ChildByFieldName("name"))
	if name == "" {
		return model.TypeSymbol{}, false
	}
	t := model.TypeSymbol{
		Name:          name,
		Kind:          model.TypeKindInterface,
		Methods:       []model.FunctionSymbol{},
		Properties:    []model.Property{},
		InterfaceLike: true,
		Comments:      w.leadingComment(node),
		StartLine:     startLine(node),
		EndLine:       endLine(node),
	}
	if ext := childOfKind(node, "extends_type_clause"); ext != nil {
		if inner := namedChildren(ext); len(inner) > 0 {
			t.SuperType = model.Ptr(w.flattenType(inner[0]))
		}
	}

	for _, member := range namedChildren(node.ChildByFieldName("body")) {
		switch member.Kind() {
		case "method_signature":
			t.Methods = append(t.Methods, w.method(member))
		case "property_signature":
			t.Properties = append(t.Properties, w.field(member))
		}
	}
	return t, true
}

func (w *ecmaWalker) enum(node *tree_sitter.Node) (model.TypeSymbol, bool) {
	name := w.text(node.ChildByFieldName("name"))
	if name == "" {
		return model.TypeSymbol{}, false
	}
	t := model.TypeSymbol{
		Name:       name,
		Kind:       model.TypeKindDefined,
		Methods:    []model.FunctionSymbol{},
		Properties: []model.Property{},
		Comments:   w.leadingComment(node),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	}
	for _, member := range namedChildren(node.ChildByFieldName("body")) {
		switch member.Kind() {
		case "property_identifier":
			t.Properties = append(t.Properties, model.Property{Name: w.text(member), Static: true})
		case "enum_assignment":
			t.Properties = append(t.Properties, model.Property{
				Name:   w.text(member.ChildByFieldName("name")),
				Static: true,
			})
		}
	}
	return t, true
}

func (w *ecmaWalker) importStatement(node *tree_sitter.Node) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	edge := model.ImportEdge{
		Source:    unquote(w.text(sourceNode)),
		Bindings:  []model.ImportBinding{},
		StartLine: startLine(node),
	}

	clause := childOfKind(node, "import_clause")
	for _, child := range namedChildren(clause) {
		switch child.Kind() {
		case "identifier":
			edge.Bindings = append(edge.Bindings, model.ImportBinding{
				Local: w.text(child),
				Kind:  model.BindingDefault,
			})
		case "namespace_import":
			if id := childOfKind(child, "identifier"); id != nil {
				edge.Bindings = append(edge.Bindings, model.ImportBinding{
					Local: w.text(id),
					Kind:  model.BindingNamespace,
				})
			}
		case "named_imports":
			for _, spec := range namedChildren(child) {
				if spec.Kind() != "import_specifier" {
					continue
				}
				name := unquote(w.text(spec.ChildByFieldName("name")))
				binding := model.ImportBinding{Local: name, Kind: model.BindingNamed}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					binding.Local = w.text(alias)
					binding.Imported = model.Ptr(name)
				}
				edge.Bindings = append(edge.Bindings, binding)
			}
		}
	}
	w.mod.Imports = append(w.mod.Imports, edge)
}

func (w *ecmaWalker) exportStatement(node *tree_sitter.Node) {
	line := startLine(node)
	isDefault := hasToken(node, "default")

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		for _, d := range w.declaration(decl) {
			kind := d.kind
			if isDefault {
				kind = model.ExportDefault
			}
			w.mod.Exports = append(w.mod.Exports, model.ExportEdge{
				Name:      d.name,
				Kind:      kind,
				TypeText:  d.typeText,
				StartLine: line,
			})
		}
		return
	}

	if value := node.ChildByFieldName("value"); value != nil {
		w.mod.Exports = append(w.mod.Exports, model.ExportEdge{
			Name:      w.defaultExport(node, value),
			Kind:      model.ExportDefault,
			StartLine: line,
		})
		return
	}

	if clause := childOfKind(node, "export_clause"); clause != nil {
		for _, spec := range namedChildren(clause) {
			if spec.Kind() != "export_specifier" {
				continue
			}
			name := unquote(w.text(spec.ChildByFieldName("name")))
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				name = unquote(w.text(alias))
			}
			w.mod.Exports = append(w.mod.Exports, model.ExportEdge{
				Name:      name,
				Kind:      model.ExportNamed,
				StartLine: line,
			})
		}
		return
	}

	// export * from "x" / export * as ns from "x"
	if hasToken(node, "*") || childOfKind(node, "namespace_export") != nil {
		name := "*"
		if ns := childOfKind(node, "namespace_export"); ns != nil {
			if inner := namedChildren(ns); len(inner) > 0 {
				name = unquote(w.text(inner[0]))
			}
		}
		w.mod.Exports = append(w.mod.Exports, model.ExportEdge{
			Name:      name,
			Kind:      model.ExportNamed,
			StartLine: line,
		})
	}
}

// defaultExport records anonymous default-exported functions and classes as
// symbols and returns the exported name.
func (w *ecmaWalker) defaultExport(stmt, value *tree_sitter.Node) string {
	switch {
	case value.Kind() == "identifier":
		return w.text(value)
	case isFunctionValue(value):
		name := w.text(value.ChildByFieldName("name"))
		if name == "" {
			name = "default"
		}
		fn := w.function(value, name, stmt)
		fn.Comments = w.leadingComment(stmt)
		w.mod.Symbols = append(w.mod.Symbols, model.FunctionSym(fn))
		return name
	case value.Kind() == "class":
		if t, ok := w.class(value, "default"); ok {
			w.mod.Symbols = append(w.mod.Symbols, model.TypeSym(t))
			return t.Name
		}
	}
	return "default"
}

// leadingComment returns the comment block directly above node, separated
// from it by at most one blank line. For exported declarations the comment
// sits above the export statement.
func (w *ecmaWalker) leadingComment(node *tree_sitter.Node) *string {
	target := node
	if parent := node.Parent(); parent != nil && parent.Kind() == "export_statement" {
		target = parent
	}

	var parts []string
	nextRow := target.StartPosition().Row
	for prev := target.PrevSibling(); prev != nil && prev.Kind() == "comment"; prev = prev.PrevSibling() {
		if nextRow-prev.EndPosition().Row > 2 {
			break
		}
		// A trailing comment on the previous statement's line belongs to it.
		if before := prev.PrevSibling(); before != nil && before.EndPosition().Row == prev.StartPosition().Row {
			break
		}
		parts = append(parts, w.text(prev))
		nextRow = prev.StartPosition().Row
	}
	if len(parts) == 0 {
		return nil
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return model.Ptr(strings.Join(parts, "\n"))
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}
