package model

import (
	"unicode"
	"unicode/utf8"
)

// --- Enums ---

// Grammar identifies the source grammar a Module was extracted with.
type Grammar string

const (
	GrammarJavaScript Grammar = "javascript"
	GrammarTypeScript Grammar = "typescript"
	GrammarPython     Grammar = "python"
	GrammarGo         Grammar = "go"
)

// Grammars lists every supported grammar in a stable order.
var Grammars = []Grammar{GrammarJavaScript, GrammarTypeScript, GrammarPython, GrammarGo}

// Strategy names how a grammar's extractor finds structure.
type Strategy string

const (
	StrategyTree   Strategy = "tree"
	StrategyIndent Strategy = "indent"
	StrategyBrace  Strategy = "brace"
)

// Strategy returns the extraction strategy used for g.
func (g Grammar) Strategy() Strategy {
	switch g {
	case GrammarPython:
		return StrategyIndent
	case GrammarGo:
		return StrategyBrace
	default:
		return StrategyTree
	}
}

// UnknownType returns the grammar-appropriate sentinel for an absent type.
func (g Grammar) UnknownType() string {
	switch g {
	case GrammarPython:
		return "Any"
	case GrammarGo:
		return "interface{}"
	default:
		return "any"
	}
}

// SymbolKind discriminates the Symbol union.
type SymbolKind string

const (
	SymbolKindFunction SymbolKind = "function"
	SymbolKindType     SymbolKind = "type"
)

// TypeKind is the source-level flavour of a TypeSymbol.
type TypeKind string

const (
	TypeKindClass     TypeKind = "class"
	TypeKindStruct    TypeKind = "struct"
	TypeKindInterface TypeKind = "interface"
	TypeKindDefined   TypeKind = "type"
)

// Visibility of a member or symbol.
type Visibility string

const (
	VisibilityUnspecified Visibility = "unspecified"
	VisibilityPublic      Visibility = "public"
	VisibilityPrivate     Visibility = "private"
	VisibilityProtected   Visibility = "protected"
)

// BindingKind classifies a name introduced by an import.
type BindingKind string

const (
	BindingDefault   BindingKind = "default"
	BindingNamed     BindingKind = "named"
	BindingNamespace BindingKind = "namespace"
)

// ExportKind classifies an exported name.
type ExportKind string

const (
	ExportFunction  ExportKind = "function"
	ExportType      ExportKind = "type"
	ExportVariable  ExportKind = "variable"
	ExportNamed     ExportKind = "named"
	ExportDefault   ExportKind = "default"
	ExportTypeAlias ExportKind = "type-alias"
)

// --- Models ---

// Module is the structural record of one parsed source file.
type Module struct {
	Path    string       `json:"path"`
	Grammar Grammar      `json:"grammar"`
	RawText string       `json:"rawText"`
	Symbols []Symbol     `json:"symbols"`
	Imports []ImportEdge `json:"imports"`
	Exports []ExportEdge `json:"exports"`
}

// Symbol is one documentable unit. Exactly one of Function and Type is set,
// matching Kind.
type Symbol struct {
	Kind     SymbolKind      `json:"kind"`
	Function *FunctionSymbol `json:"function,omitempty"`
	Type     *TypeSymbol     `json:"type,omitempty"`
}

// FunctionSymbol describes a function, method or function-valued variable.
type FunctionSymbol struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
	ReturnType string      `json:"returnType"`
	Async      bool        `json:"async"`
	Generator  bool        `json:"generator"`
	Static     bool        `json:"static"`
	Visibility Visibility  `json:"visibility"`
	Receiver   string      `json:"receiver"`
	Comments   *string     `json:"comments"`
	StartLine  int         `json:"startLine"`
	EndLine    int         `json:"endLine"`
}

// Parameter is one declared function parameter.
type Parameter struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Default  *string `json:"default"`
	Optional bool    `json:"optional"`
}

// TypeSymbol unifies classes, structs, interfaces and defined types.
type TypeSymbol struct {
	Name          string           `json:"name"`
	Kind          TypeKind         `json:"kind"`
	Methods       []FunctionSymbol `json:"methods"`
	Properties    []Property       `json:"properties"`
	Constructor   *FunctionSymbol  `json:"constructor"`
	SuperType     *string          `json:"superType"`
	InterfaceLike bool             `json:"interfaceLike"`
	Comments      *string          `json:"comments"`
	StartLine     int              `json:"startLine"`
	EndLine       int              `json:"endLine"`
}

// Property is a field or attribute declared on a TypeSymbol.
type Property struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Static     bool       `json:"static"`
	Visibility Visibility `json:"visibility"`
	Optional   bool       `json:"optional"`
}

// ImportEdge records one import statement. Source is the module specifier
// exactly as written.
type ImportEdge struct {
	Source    string          `json:"source"`
	Bindings  []ImportBinding `json:"bindings"`
	StartLine int             `json:"startLine"`
}

// ImportBinding is a local name introduced by an import. Imported is set
// only when the binding renames the original name.
type ImportBinding struct {
	Local    string      `json:"local"`
	Kind     BindingKind `json:"kind"`
	Imported *string     `json:"imported"`
}

// ExportEdge records one exported name.
type ExportEdge struct {
	Name      string     `json:"name"`
	Kind      ExportKind `json:"kind"`
	TypeText  *string    `json:"typeText"`
	StartLine int        `json:"startLine"`
}

// ModuleStats summarizes the symbols of a Module.
type ModuleStats struct {
	Functions int `json:"functions"`
	Types     int `json:"types"`
	Imports   int `json:"imports"`
	Exports   int `json:"exports"`
}

// FunctionSym wraps f as a Symbol.
func FunctionSym(f FunctionSymbol) Symbol {
	return Symbol{Kind: SymbolKindFunction, Function: &f}
}

// TypeSym wraps t as a Symbol.
func TypeSym(t TypeSymbol) Symbol {
	return Symbol{Kind: SymbolKindType, Type: &t}
}

// Name returns the name of whichever symbol is set.
func (s Symbol) Name() string {
	switch {
	case s.Function != nil:
		return s.Function.Name
	case s.Type != nil:
		return s.Type.Name
	default:
		return ""
	}
}

// Functions returns the function symbols of m in source order.
func (m Module) Functions() []FunctionSymbol {
	var out []FunctionSymbol
	for _, s := range m.Symbols {
		if s.Function != nil {
			out = append(out, *s.Function)
		}
	}
	return out
}

// Types returns the type symbols of m in source order.
func (m Module) Types() []TypeSymbol {
	var out []TypeSymbol
	for _, s := range m.Symbols {
		if s.Type != nil {
			out = append(out, *s.Type)
		}
	}
	return out
}

// Stats counts the symbols and edges of m.
func (m Module) Stats() ModuleStats {
	var st ModuleStats
	for _, s := range m.Symbols {
		switch s.Kind {
		case SymbolKindFunction:
			st.Functions++
		case SymbolKindType:
			st.Types++
		}
	}
	st.Imports = len(m.Imports)
	st.Exports = len(m.Exports)
	return st
}

// IsExportedName reports whether name follows the upper-case export
// convention of brace-based grammars.
func IsExportedName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

// Ptr returns a pointer to a copy of s.
func Ptr(s string) *string {
	return &s
}
