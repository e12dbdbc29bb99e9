package render

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/autodocs/internal/docs"
)

// Markdown renders documentation as Markdown.
type Markdown struct{}

var _ Renderer = (*Markdown)(nil)

// NewMarkdown returns a Markdown renderer.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

func (m *Markdown) Format() Format    { return FormatMarkdown }
func (m *Markdown) Extension() string { return ".md" }

// RenderFile renders one source file's documentation.
func (m *Markdown) RenderFile(doc docs.Documentation) (Artifact, error) {
	var b strings.Builder

	b.WriteString("# " + doc.Title + "\n\n")
	b.WriteString(doc.Description + "\n\n")
	b.WriteString(fmt.Sprintf("- **File:** `%s`\n", doc.Path))
	b.WriteString(fmt.Sprintf("- **Grammar:** %s\n\n", doc.Grammar))

	b.WriteString("## Table of Contents\n\n")
	for _, e := range tocEntries(doc) {
		b.WriteString(fmt.Sprintf("- [%s](#%s)\n", e.label, e.anchor))
	}
	b.WriteString("\n")

	if len(doc.Functions) > 0 {
		b.WriteString("## Functions\n\n")
		for _, fn := range doc.Functions {
			m.writeFunction(&b, "###", fn)
		}
	}

	if len(doc.Types) > 0 {
		b.WriteString("## Types\n\n")
		for _, t := range doc.Types {
			m.writeType(&b, t)
		}
	}

	if len(doc.Exports) > 0 {
		b.WriteString("## Exports\n\n")
		b.WriteString("| Name | Kind | Description |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, e := range doc.Exports {
			name := e.Export.Name
			if e.Export.TypeText != nil {
				name += " = " + *e.Export.TypeText
			}
			b.WriteString(fmt.Sprintf("| `%s` | %s | %s |\n", mdCell(name), e.Export.Kind, mdCell(e.Description)))
		}
		b.WriteString("\n")
	}

	if len(doc.Imports) > 0 {
		b.WriteString("## Imports\n\n")
		for _, imp := range doc.Imports {
			b.WriteString(fmt.Sprintf("- `%s`\n", importText(imp)))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Usage\n\n")
	b.WriteString(doc.Usage + "\n\n")

	if doc.Notes != "" {
		b.WriteString("## Notes\n\n")
		b.WriteString(doc.Notes + "\n")
	}

	return Artifact{Name: ArtifactName(doc.Path, m.Extension()), Content: []byte(b.String())}, nil
}

func (m *Markdown) writeFunction(b *strings.Builder, heading string, fn docs.DocumentedFunction) {
	b.WriteString(fmt.Sprintf("%s %s\n\n", heading, fn.Symbol.Name))
	b.WriteString("```\n" + signature(fn.Symbol) + "\n```\n\n")
	b.WriteString(fn.Description + "\n\n")

	if len(fn.Params) == 0 {
		b.WriteString("**Parameters:** none\n\n")
	} else {
		b.WriteString("**Parameters:**\n\n")
		for i, p := range fn.Params {
			b.WriteString(fmt.Sprintf("- `%s`: %s\n", paramLabel(fn, i, p), p.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("**Returns:** `%s`: %s\n\n", fn.Symbol.ReturnType, fn.Returns))

	if fn.Example != "" {
		b.WriteString("**Example:**\n\n```\n" + fn.Example + "\n```\n\n")
	}
	if lines := lineRange(fn.Symbol.StartLine, fn.Symbol.EndLine); lines != "" {
		b.WriteString("_Defined at " + lines + "._\n\n")
	}
}

func (m *Markdown) writeType(b *strings.Builder, t docs.DocumentedType) {
	sym := t.Symbol
	b.WriteString(fmt.Sprintf("### %s %s\n\n", sym.Kind, sym.Name))
	if sym.SuperType != nil {
		b.WriteString(fmt.Sprintf("**Extends:** `%s`\n\n", *sym.SuperType))
	}
	b.WriteString(t.Description + "\n\n")

	if len(sym.Properties) > 0 {
		b.WriteString("**Properties:**\n\n")
		b.WriteString("| Name | Type | Visibility | Static | Optional |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, p := range sym.Properties {
			b.WriteString(fmt.Sprintf("| `%s` | `%s` | %s | %t | %t |\n", mdCell(p.Name), mdCell(p.Type), p.Visibility, p.Static, p.Optional))
		}
		b.WriteString("\n")
	}

	if sym.Constructor != nil {
		b.WriteString("**Constructor:**\n\n```\n" + signature(*sym.Constructor) + "\n```\n\n")
	}

	for _, meth := range t.Methods {
		m.writeFunction(b, "####", meth)
	}

	if t.Example != "" {
		b.WriteString("**Example:**\n\n```\n" + t.Example + "\n```\n\n")
	}
}

// RenderIndex renders a table with one row per file.
func (m *Markdown) RenderIndex(all []docs.Documentation) (Artifact, error) {
	var b strings.Builder
	b.WriteString("# Documentation Index\n\n")
	b.WriteString("| File | Description | Functions | Types | Exports |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, doc := range all {
		stats := doc.Stats()
		b.WriteString(fmt.Sprintf("| [%s](%s) | %s | %d | %d | %d |\n",
			mdCell(doc.Title), ArtifactName(doc.Path, m.Extension()), mdCell(doc.Description),
			stats.Functions, stats.Types, stats.Exports))
	}
	return Artifact{Name: IndexName(m.Extension()), Content: []byte(b.String())}, nil
}

type tocEntry struct {
	label  string
	anchor string
}

func tocEntries(doc docs.Documentation) []tocEntry {
	var out []tocEntry
	for _, fn := range doc.Functions {
		out = append(out, tocEntry{label: fn.Symbol.Name, anchor: anchor(fn.Symbol.Name)})
	}
	for _, t := range doc.Types {
		out = append(out, tocEntry{label: t.Symbol.Name, anchor: anchor(string(t.Symbol.Kind) + " " + t.Symbol.Name)})
	}
	if len(doc.Exports) > 0 {
		out = append(out, tocEntry{label: "Exports", anchor: "exports"})
	}
	out = append(out, tocEntry{label: "Usage", anchor: "usage"})
	return out
}

// anchor follows the GitHub heading slug rules closely enough for
// identifiers: lower-case, spaces to dashes, punctuation dropped.
func anchor(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(heading) {
		switch {
		case r == ' ':
			b.WriteRune('-')
		case r == '-' || r == '_' || ('a' <= r && r <= 'z') || ('0' <= r && r <= '9'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// paramLabel prefers the full parameter text from the symbol and falls back
// to the documented name when the two lists disagree.
func paramLabel(fn docs.DocumentedFunction, i int, p docs.ParamDoc) string {
	if i < len(fn.Symbol.Parameters) && fn.Symbol.Parameters[i].Name == p.Name {
		return paramText(fn.Symbol.Parameters[i])
	}
	return p.Name
}
