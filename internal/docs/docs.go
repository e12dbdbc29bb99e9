// Package docs merges an extracted Module with prose from the prose service
// into the Documentation value every renderer consumes.
package docs

import (
	"path/filepath"

	"github.com/dusk-indust/autodocs/internal/model"
	"github.com/dusk-indust/autodocs/internal/prose"
)

// Placeholder stands in for any prose the service did not supply.
const Placeholder = "No description provided."

// UnavailablePrefix starts the notes of a file whose prose request failed.
const UnavailablePrefix = "Documentation unavailable: "

// Documentation is one Module paired with its prose. It is created once per
// file and never modified afterwards.
type Documentation struct {
	Path             string               `json:"path"`
	Grammar          model.Grammar        `json:"grammar"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Functions        []DocumentedFunction `json:"functions"`
	Types            []DocumentedType     `json:"types"`
	Exports          []DocumentedExport   `json:"exports"`
	Imports          []model.ImportEdge   `json:"imports"`
	Usage            string               `json:"usage"`
	Notes            string               `json:"notes"`
	ProseUnavailable bool                 `json:"proseUnavailable"`
}

// DocumentedFunction pairs a function with its prose.
type DocumentedFunction struct {
	Symbol      model.FunctionSymbol `json:"symbol"`
	Description string               `json:"description"`
	Params      []ParamDoc           `json:"params"`
	Returns     string               `json:"returns"`
	Example     string               `json:"example"`
}

// ParamDoc is the prose for one parameter, in declaration order.
type ParamDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DocumentedType pairs a type with its prose and its methods' prose.
type DocumentedType struct {
	Symbol      model.TypeSymbol     `json:"symbol"`
	Description string               `json:"description"`
	Example     string               `json:"example"`
	Methods     []DocumentedFunction `json:"methods"`
}

// DocumentedExport pairs an export with its prose.
type DocumentedExport struct {
	Export      model.ExportEdge `json:"export"`
	Description string           `json:"description"`
}

// Stats summarizes the documented symbols.
type Stats struct {
	Functions int `json:"functions"`
	Types     int `json:"types"`
	Exports   int `json:"exports"`
}

// Stats returns the symbol counts of d.
func (d Documentation) Stats() Stats {
	return Stats{
		Functions: len(d.Functions),
		Types:     len(d.Types),
		Exports:   len(d.Exports),
	}
}

// Assemble merges m with resp. When proseErr is non-nil the response is
// ignored, every section gets placeholder prose and the notes explain why.
// A nil resp is treated as an empty one.
func Assemble(m model.Module, resp *prose.Response, proseErr error) Documentation {
	m = model.Normalize(m)
	if resp == nil || proseErr != nil {
		resp = &prose.Response{}
	}

	doc := Documentation{
		Path:        model.ValidText(m.Path),
		Grammar:     m.Grammar,
		Title:       orDefault(resp.Title, filepath.Base(m.Path)),
		Description: orDefault(resp.Description, Placeholder),
		Functions:   []DocumentedFunction{},
		Types:       []DocumentedType{},
		Exports:     []DocumentedExport{},
		Imports:     m.Imports,
		Usage:       orDefault(resp.Usage, Placeholder),
		Notes:       model.ValidText(resp.Notes),
	}

	for _, fn := range m.Functions() {
		doc.Functions = append(doc.Functions, documentFunction(fn, resp.Functions[fn.Name]))
	}

	for _, t := range m.Types() {
		tp := resp.Types[t.Name]
		dt := DocumentedType{
			Symbol:      t,
			Description: orDefault(tp.Description, Placeholder),
			Example:     model.ValidText(tp.Example),
			Methods:     make([]DocumentedFunction, 0, len(t.Methods)),
		}
		for _, meth := range t.Methods {
			dt.Methods = append(dt.Methods, documentFunction(meth, tp.Methods[meth.Name]))
		}
		doc.Types = append(doc.Types, dt)
	}

	for _, e := range m.Exports {
		doc.Exports = append(doc.Exports, DocumentedExport{
			Export:      e,
			Description: orDefault(resp.Exports[e.Name], Placeholder),
		})
	}

	if proseErr != nil {
		doc.ProseUnavailable = true
		doc.Notes = UnavailablePrefix + model.ValidText(proseErr.Error())
	}
	return doc
}

func documentFunction(fn model.FunctionSymbol, sp prose.SymbolProse) DocumentedFunction {
	df := DocumentedFunction{
		Symbol:      fn,
		Description: orDefault(sp.Description, Placeholder),
		Params:      make([]ParamDoc, 0, len(fn.Parameters)),
		Returns:     orDefault(sp.Returns, Placeholder),
		Example:     model.ValidText(sp.Example),
	}
	for _, p := range fn.Parameters {
		df.Params = append(df.Params, ParamDoc{
			Name:        p.Name,
			Description: orDefault(sp.Params[p.Name], Placeholder),
		})
	}
	return df
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return model.ValidText(s)
}
