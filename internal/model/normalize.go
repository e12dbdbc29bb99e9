package model

import "strings"

// Normalize returns a copy of m in which every type string is non-empty
// (falling back to the grammar's unknown-type sentinel), every slice is
// non-nil, every visibility is set and every line span satisfies
// EndLine >= StartLine or is 0/0. Invalid UTF-8 in extracted text is
// replaced with U+FFFD; Path and RawText are kept as they are. m itself
// is not modified.
func Normalize(m Module) Module {
	out := m.Clone()
	sentinel := m.Grammar.UnknownType()

	if out.Symbols == nil {
		out.Symbols = []Symbol{}
	}
	if out.Imports == nil {
		out.Imports = []ImportEdge{}
	}
	if out.Exports == nil {
		out.Exports = []ExportEdge{}
	}

	for i := range out.Symbols {
		s := &out.Symbols[i]
		switch {
		case s.Function != nil:
			s.Kind = SymbolKindFunction
			s.Type = nil
			normalizeFunction(s.Function, sentinel)
		case s.Type != nil:
			s.Kind = SymbolKindType
			normalizeType(s.Type, sentinel)
		}
	}

	for i := range out.Imports {
		imp := &out.Imports[i]
		imp.Source = ValidText(imp.Source)
		if imp.Bindings == nil {
			imp.Bindings = []ImportBinding{}
		}
		for j := range imp.Bindings {
			b := &imp.Bindings[j]
			b.Local = ValidText(b.Local)
			b.Imported = validPtr(b.Imported)
		}
	}

	for i := range out.Exports {
		e := &out.Exports[i]
		e.Name = ValidText(e.Name)
		e.TypeText = validPtr(e.TypeText)
	}

	return out
}

// ValidText returns s with every invalid UTF-8 sequence replaced by U+FFFD,
// which is what encoding/json would write for it.
func ValidText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func validPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := ValidText(*p)
	return &v
}

func normalizeFunction(f *FunctionSymbol, sentinel string) {
	f.Name = ValidText(f.Name)
	f.Receiver = ValidText(f.Receiver)
	f.Comments = validPtr(f.Comments)
	if f.Parameters == nil {
		f.Parameters = []Parameter{}
	}
	for i := range f.Parameters {
		p := &f.Parameters[i]
		p.Name = ValidText(p.Name)
		p.Type = ValidText(p.Type)
		p.Default = validPtr(p.Default)
		if p.Type == "" {
			p.Type = sentinel
		}
	}
	f.ReturnType = ValidText(f.ReturnType)
	if f.ReturnType == "" {
		f.ReturnType = sentinel
	}
	if f.Visibility == "" {
		f.Visibility = VisibilityUnspecified
	}
	f.StartLine, f.EndLine = normalizeSpan(f.StartLine, f.EndLine)
}

func normalizeType(t *TypeSymbol, sentinel string) {
	t.Name = ValidText(t.Name)
	t.SuperType = validPtr(t.SuperType)
	t.Comments = validPtr(t.Comments)
	if t.Kind == "" {
		t.Kind = TypeKindClass
	}
	if t.Methods == nil {
		t.Methods = []FunctionSymbol{}
	}
	for i := range t.Methods {
		normalizeFunction(&t.Methods[i], sentinel)
	}
	if t.Properties == nil {
		t.Properties = []Property{}
	}
	for i := range t.Properties {
		p := &t.Properties[i]
		p.Name = ValidText(p.Name)
		p.Type = ValidText(p.Type)
		if p.Type == "" {
			p.Type = sentinel
		}
		if p.Visibility == "" {
			p.Visibility = VisibilityUnspecified
		}
	}
	if t.Constructor != nil {
		normalizeFunction(t.Constructor, sentinel)
	}
	t.StartLine, t.EndLine = normalizeSpan(t.StartLine, t.EndLine)
}

func normalizeSpan(start, end int) (int, int) {
	if start <= 0 {
		return 0, 0
	}
	if end < start {
		return start, start
	}
	return start, end
}

// Clone returns a deep copy of m. Downstream code that wants to add to a
// Module hands around clones rather than mutating a shared value.
func (m Module) Clone() Module {
	out := m
	if m.Symbols != nil {
		out.Symbols = make([]Symbol, len(m.Symbols))
		for i, s := range m.Symbols {
			out.Symbols[i] = s.clone()
		}
	}
	if m.Imports != nil {
		out.Imports = make([]ImportEdge, len(m.Imports))
		for i, imp := range m.Imports {
			out.Imports[i] = imp.clone()
		}
	}
	if m.Exports != nil {
		out.Exports = make([]ExportEdge, len(m.Exports))
		for i, e := range m.Exports {
			e.TypeText = clonePtr(e.TypeText)
			out.Exports[i] = e
		}
	}
	return out
}

func (s Symbol) clone() Symbol {
	out := Symbol{Kind: s.Kind}
	if s.Function != nil {
		f := s.Function.Clone()
		out.Function = &f
	}
	if s.Type != nil {
		t := s.Type.Clone()
		out.Type = &t
	}
	return out
}

// Clone returns a deep copy of f.
func (f FunctionSymbol) Clone() FunctionSymbol {
	out := f
	out.Comments = clonePtr(f.Comments)
	if f.Parameters != nil {
		out.Parameters = make([]Parameter, len(f.Parameters))
		for i, p := range f.Parameters {
			p.Default = clonePtr(p.Default)
			out.Parameters[i] = p
		}
	}
	return out
}

// Clone returns a deep copy of t.
func (t TypeSymbol) Clone() TypeSymbol {
	out := t
	out.Comments = clonePtr(t.Comments)
	out.SuperType = clonePtr(t.SuperType)
	if t.Methods != nil {
		out.Methods = make([]FunctionSymbol, len(t.Methods))
		for i, m := range t.Methods {
			out.Methods[i] = m.Clone()
		}
	}
	if t.Properties != nil {
		out.Properties = make([]Property, len(t.Properties))
		copy(out.Properties, t.Properties)
	}
	if t.Constructor != nil {
		c := t.Constructor.Clone()
		out.Constructor = &c
	}
	return out
}

func (e ImportEdge) clone() ImportEdge {
	out := e
	if e.Bindings != nil {
		out.Bindings = make([]ImportBinding, len(e.Bindings))
		for i, b := range e.Bindings {
			b.Imported = clonePtr(b.Imported)
			out.Bindings[i] = b
		}
	}
	return out
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
