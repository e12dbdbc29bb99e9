// Package render turns Documentation values into artifact text. Renderers
// are pure: they never touch the filesystem, the caller persists the
// returned Artifact under its suggested name.
package render

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/autodocs/internal/docs"
	"github.com/dusk-indust/autodocs/internal/model"
)

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// AllFormats lists every supported format in rendering order.
var AllFormats = []Format{FormatMarkdown, FormatHTML, FormatJSON}

// Artifact is rendered text plus the file name it should be written under.
type Artifact struct {
	Name    string
	Content []byte
}

// Renderer renders documentation in one output format.
type Renderer interface {
	Format() Format
	Extension() string
	// RenderFile renders the artifact for a single source file.
	RenderFile(doc docs.Documentation) (Artifact, error)
	// RenderIndex renders one entry per documentation value, in the order given.
	RenderIndex(all []docs.Documentation) (Artifact, error)
}

// Combiner is implemented by renderers that also emit one artifact holding
// every file's documentation.
type Combiner interface {
	RenderCombined(all []docs.Documentation) (Artifact, error)
}

// Options configures the renderers built by New.
type Options struct {
	// Template is the HTML page template. Empty selects the built-in one.
	Template string
	// Now supplies the generation timestamp. Defaults to time.Now.
	Now func() time.Time
}

// New returns the renderer for f.
func New(f Format, opts Options) (Renderer, error) {
	switch f {
	case FormatMarkdown:
		return NewMarkdown(), nil
	case FormatHTML:
		return NewHTML(opts), nil
	case FormatJSON:
		return NewJSON(), nil
	default:
		return nil, &OutputFormatError{Format: string(f)}
	}
}

// ParseFormats resolves user-supplied format names. Names are
// case-insensitive, "md" is accepted for markdown and duplicates are
// dropped. An unknown name fails with *OutputFormatError.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	var out []Format
	for _, name := range names {
		var f Format
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "markdown", "md":
			f = FormatMarkdown
		case "html", "htm":
			f = FormatHTML
		case "json":
			f = FormatJSON
		default:
			return nil, &OutputFormatError{Format: name}
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// ArtifactName derives the per-file artifact name from a source path:
// the base name without its extension, plus ext.
func ArtifactName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

// IndexName is the name of the index artifact for ext.
func IndexName(ext string) string {
	return "index" + ext
}

// signature renders fn as name(p: T, q?: U = d): R.
func signature(fn model.FunctionSymbol) string {
	params := make([]string, 0, len(fn.Parameters))
	for _, p := range fn.Parameters {
		params = append(params, paramText(p))
	}
	var b strings.Builder
	if fn.Static {
		b.WriteString("static ")
	}
	if fn.Async {
		b.WriteString("async ")
	}
	if fn.Receiver != "" {
		b.WriteString(fmt.Sprintf("(%s) ", fn.Receiver))
	}
	b.WriteString(fn.Name)
	if fn.Generator {
		b.WriteString("*")
	}
	b.WriteString(fmt.Sprintf("(%s)", strings.Join(params, ", ")))
	if fn.ReturnType != "" {
		b.WriteString(": " + fn.ReturnType)
	}
	return b.String()
}

func paramText(p model.Parameter) string {
	s := p.Name
	if p.Optional {
		s += "?"
	}
	if p.Type != "" {
		s += ": " + p.Type
	}
	if p.Default != nil {
		s += " = " + *p.Default
	}
	return s
}

func lineRange(start, end int) string {
	if start == 0 {
		return ""
	}
	if start == end {
		return fmt.Sprintf("line %d", start)
	}
	return fmt.Sprintf("lines %d-%d", start, end)
}

func bindingText(b model.ImportBinding) string {
	switch {
	case b.Imported != nil:
		return *b.Imported + " as " + b.Local
	case b.Kind == model.BindingNamespace && b.Local != "*":
		return "* as " + b.Local
	default:
		return b.Local
	}
}

func importText(imp model.ImportEdge) string {
	if len(imp.Bindings) == 0 {
		return imp.Source
	}
	names := make([]string, 0, len(imp.Bindings))
	for _, b := range imp.Bindings {
		names = append(names, bindingText(b))
	}
	return fmt.Sprintf("%s (%s)", imp.Source, strings.Join(names, ", "))
}
