package render

import (
	_ "embed"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dusk-indust/autodocs/internal/docs"
	"github.com/dusk-indust/autodocs/internal/model"
)

// DefaultTemplate is the built-in page template used when no template is
// configured.
//
//go:embed templates/default.html
var DefaultTemplate string

// Slot markers recognized in HTML templates.
const (
	SlotTitle       = "{{title}}"
	SlotFilePath    = "{{filePath}}"
	SlotGrammar     = "{{grammar}}"
	SlotDescription = "{{description}}"
	SlotTOC         = "{{toc}}"
	SlotFunctions   = "{{functions}}"
	SlotTypes       = "{{types}}"
	SlotExports     = "{{exports}}"
	SlotUsage       = "{{usage}}"
	SlotNotes       = "{{notes}}"
	SlotGeneratedAt = "{{generatedAt}}"
)

// RequiredSlots must all appear in a template.
var RequiredSlots = []string{
	SlotTitle, SlotDescription, SlotTOC, SlotFunctions,
	SlotTypes, SlotExports, SlotUsage, SlotNotes,
}

// HTML renders documentation by filling the slots of a page template.
type HTML struct {
	template string
	now      func() time.Time
}

var _ Renderer = (*HTML)(nil)

// NewHTML returns an HTML renderer. The template is not checked until
// Validate or RenderFile is called.
func NewHTML(opts Options) *HTML {
	h := &HTML{template: opts.Template, now: opts.Now}
	if h.template == "" {
		h.template = DefaultTemplate
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

func (h *HTML) Format() Format    { return FormatHTML }
func (h *HTML) Extension() string { return ".html" }

// Validate reports a *TemplateError listing every required slot the
// template lacks.
func (h *HTML) Validate() error {
	var missing []string
	for _, slot := range RequiredSlots {
		if !strings.Contains(h.template, slot) {
			missing = append(missing, slot)
		}
	}
	if len(missing) > 0 {
		return &TemplateError{Missing: missing}
	}
	return nil
}

// RenderFile substitutes every slot in a single pass, so slot markers
// inside substituted values are left as literal text.
func (h *HTML) RenderFile(doc docs.Documentation) (Artifact, error) {
	if err := h.Validate(); err != nil {
		return Artifact{}, err
	}

	r := strings.NewReplacer(
		SlotTitle, esc(doc.Title),
		SlotFilePath, esc(doc.Path),
		SlotGrammar, esc(string(doc.Grammar)),
		SlotDescription, esc(doc.Description),
		SlotTOC, htmlTOC(doc),
		SlotFunctions, htmlFunctions(doc.Functions, "fn"),
		SlotTypes, htmlTypes(doc.Types),
		SlotExports, htmlExports(doc.Exports),
		SlotUsage, esc(doc.Usage),
		SlotNotes, esc(doc.Notes),
		SlotGeneratedAt, esc(h.now().UTC().Format(time.RFC3339)),
	)
	return Artifact{
		Name:    ArtifactName(doc.Path, h.Extension()),
		Content: []byte(r.Replace(h.template)),
	}, nil
}

// RenderIndex renders a standalone page linking every file's artifact.
func (h *HTML) RenderIndex(all []docs.Documentation) (Artifact, error) {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>Documentation Index</title>\n</head>\n<body>\n")
	b.WriteString("<h1>Documentation Index</h1>\n<table>\n")
	b.WriteString("<tr><th>File</th><th>Description</th><th>Functions</th><th>Types</th><th>Exports</th></tr>\n")
	for _, doc := range all {
		stats := doc.Stats()
		b.WriteString(fmt.Sprintf("<tr><td><a href=\"%s\">%s</a></td><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>\n",
			esc(ArtifactName(doc.Path, h.Extension())), esc(doc.Title), esc(doc.Description),
			stats.Functions, stats.Types, stats.Exports))
	}
	b.WriteString("</table>\n")
	b.WriteString(fmt.Sprintf("<footer>Generated %s</footer>\n", esc(h.now().UTC().Format(time.RFC3339))))
	b.WriteString("</body>\n</html>\n")
	return Artifact{Name: IndexName(h.Extension()), Content: []byte(b.String())}, nil
}

func htmlTOC(doc docs.Documentation) string {
	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, fn := range doc.Functions {
		b.WriteString(fmt.Sprintf("<li><a href=\"#fn-%s\">%s</a></li>\n", esc(fn.Symbol.Name), esc(fn.Symbol.Name)))
	}
	for _, t := range doc.Types {
		b.WriteString(fmt.Sprintf("<li><a href=\"#type-%s\">%s</a></li>\n", esc(t.Symbol.Name), esc(t.Symbol.Name)))
	}
	b.WriteString("<li><a href=\"#exports\">Exports</a></li>\n")
	b.WriteString("<li><a href=\"#usage\">Usage</a></li>\n")
	b.WriteString("</ul>")
	return b.String()
}

func htmlFunctions(fns []docs.DocumentedFunction, idPrefix string) string {
	if len(fns) == 0 {
		return "<p>None.</p>"
	}
	var b strings.Builder
	for _, fn := range fns {
		htmlFunction(&b, fn, idPrefix)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func htmlFunction(b *strings.Builder, fn docs.DocumentedFunction, idPrefix string) {
	b.WriteString(fmt.Sprintf("<section class=\"symbol function\" id=\"%s-%s\">\n", idPrefix, esc(fn.Symbol.Name)))
	b.WriteString(fmt.Sprintf("<h3>%s</h3>\n", esc(fn.Symbol.Name)))
	b.WriteString(fmt.Sprintf("<pre><code>%s</code></pre>\n", esc(signature(fn.Symbol))))
	b.WriteString(fmt.Sprintf("<p>%s</p>\n", esc(fn.Description)))

	b.WriteString("<h4>Parameters</h4>\n")
	if len(fn.Params) == 0 {
		b.WriteString("<p class=\"params-none\">none</p>\n")
	} else {
		b.WriteString("<ul class=\"params\">\n")
		for i, p := range fn.Params {
			b.WriteString(fmt.Sprintf("<li><code>%s</code>: %s</li>\n", esc(paramLabel(fn, i, p)), esc(p.Description)))
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString(fmt.Sprintf("<p class=\"returns\"><strong>Returns</strong> <code>%s</code>: %s</p>\n",
		esc(fn.Symbol.ReturnType), esc(fn.Returns)))
	if fn.Example != "" {
		b.WriteString(fmt.Sprintf("<pre class=\"example\"><code>%s</code></pre>\n", esc(fn.Example)))
	}
	b.WriteString("</section>\n")
}

func htmlTypes(types []docs.DocumentedType) string {
	if len(types) == 0 {
		return "<p>None.</p>"
	}
	var b strings.Builder
	for _, t := range types {
		sym := t.Symbol
		b.WriteString(fmt.Sprintf("<section class=\"symbol type\" id=\"type-%s\">\n", esc(sym.Name)))
		b.WriteString(fmt.Sprintf("<h3>%s %s</h3>\n", esc(string(sym.Kind)), esc(sym.Name)))
		if sym.SuperType != nil {
			b.WriteString(fmt.Sprintf("<p class=\"extends\">Extends <code>%s</code></p>\n", esc(*sym.SuperType)))
		}
		b.WriteString(fmt.Sprintf("<p>%s</p>\n", esc(t.Description)))
		if len(sym.Properties) > 0 {
			htmlProperties(&b, sym.Properties)
		}
		if sym.Constructor != nil {
			b.WriteString(fmt.Sprintf("<h4>Constructor</h4>\n<pre><code>%s</code></pre>\n", esc(signature(*sym.Constructor))))
		}
		for _, meth := range t.Methods {
			htmlFunction(&b, meth, "type-"+esc(sym.Name))
		}
		if t.Example != "" {
			b.WriteString(fmt.Sprintf("<pre class=\"example\"><code>%s</code></pre>\n", esc(t.Example)))
		}
		b.WriteString("</section>\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func htmlProperties(b *strings.Builder, props []model.Property) {
	b.WriteString("<table class=\"properties\">\n")
	b.WriteString("<tr><th>Name</th><th>Type</th><th>Visibility</th><th>Static</th><th>Optional</th></tr>\n")
	for _, p := range props {
		b.WriteString(fmt.Sprintf("<tr><td><code>%s</code></td><td><code>%s</code></td><td>%s</td><td>%t</td><td>%t</td></tr>\n",
			esc(p.Name), esc(p.Type), esc(string(p.Visibility)), p.Static, p.Optional))
	}
	b.WriteString("</table>\n")
}

func htmlExports(exports []docs.DocumentedExport) string {
	if len(exports) == 0 {
		return "<p>None.</p>"
	}
	var b strings.Builder
	b.WriteString("<table class=\"exports\">\n")
	b.WriteString("<tr><th>Name</th><th>Kind</th><th>Description</th></tr>\n")
	for _, e := range exports {
		name := e.Export.Name
		if e.Export.TypeText != nil {
			name += " = " + *e.Export.TypeText
		}
		b.WriteString(fmt.Sprintf("<tr><td><code>%s</code></td><td>%s</td><td>%s</td></tr>\n",
			esc(name), esc(string(e.Export.Kind)), esc(e.Description)))
	}
	b.WriteString("</table>")
	return b.String()
}

func esc(s string) string {
	return html.EscapeString(s)
}
