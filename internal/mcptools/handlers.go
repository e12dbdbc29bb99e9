package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/autodocs/internal/extract"
	"github.com/dusk-indust/autodocs/internal/model"
	"github.com/dusk-indust/autodocs/internal/orchestrator"
	"github.com/dusk-indust/autodocs/internal/prose"
	"github.com/dusk-indust/autodocs/internal/render"
)

// DocsService holds the collaborators used by the MCP tool handlers.
type DocsService struct {
	lenient      *extract.Registry
	strict       *extract.Registry
	prose        prose.Service
	render       render.Options
	strictRender bool
}

// ServiceOption configures a DocsService.
type ServiceOption func(*DocsService)

// WithProse sets the prose service used by render_documentation.
func WithProse(svc prose.Service) ServiceOption {
	return func(s *DocsService) {
		s.prose = svc
	}
}

// WithRenderOptions sets the options passed to renderers.
func WithRenderOptions(opts render.Options) ServiceOption {
	return func(s *DocsService) {
		s.render = opts
	}
}

// WithStrictRendering makes render_documentation extract in strict mode.
func WithStrictRendering(strict bool) ServiceOption {
	return func(s *DocsService) {
		s.strictRender = strict
	}
}

// NewDocsService creates a DocsService. Without WithProse it renders
// placeholder prose.
func NewDocsService(opts ...ServiceOption) *DocsService {
	s := &DocsService{
		lenient: extract.NewRegistry(extract.Options{}),
		strict:  extract.NewRegistry(extract.Options{Strict: true}),
		prose:   prose.Offline{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExtractModule parses one source file and returns its normalized Module.
func (s *DocsService) ExtractModule(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractModuleInput,
) (*mcp.CallToolResult, ExtractModuleOutput, error) {
	source, err := readSource(input.Path, input.Content)
	if err != nil {
		return nil, ExtractModuleOutput{}, err
	}

	reg := s.lenient
	if input.Strict {
		reg = s.strict
	}
	m, err := reg.Parse(ctx, input.Path, source)
	if err != nil {
		return nil, ExtractModuleOutput{}, err
	}
	m.RawText = ""

	return nil, ExtractModuleOutput{Module: m, Stats: m.Stats()}, nil
}

// RenderDocumentation runs the full pipeline for one file and returns the
// per-file artifact in the requested format.
func (s *DocsService) RenderDocumentation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenderDocumentationInput,
) (*mcp.CallToolResult, RenderDocumentationOutput, error) {
	source, err := readSource(input.Path, input.Content)
	if err != nil {
		return nil, RenderDocumentationOutput{}, err
	}

	name := input.Format
	if name == "" {
		name = string(render.FormatMarkdown)
	}
	formats, err := render.ParseFormats([]string{name})
	if err != nil {
		return nil, RenderDocumentationOutput{}, err
	}

	reg := s.lenient
	if s.strictRender {
		reg = s.strict
	}
	p, err := orchestrator.NewPipeline(orchestrator.Config{Workers: 1, Formats: formats, Render: s.render}, reg, s.prose)
	if err != nil {
		return nil, RenderDocumentationOutput{}, err
	}

	report, err := p.Run(ctx, []orchestrator.Input{{Path: input.Path, Content: source}})
	if err != nil {
		return nil, RenderDocumentationOutput{}, err
	}
	if len(report.Skipped) > 0 {
		return nil, RenderDocumentationOutput{}, report.Skipped[0].Err
	}
	if len(report.RenderFailures) > 0 {
		return nil, RenderDocumentationOutput{}, report.RenderFailures[0].Err
	}

	want := render.ArtifactName(input.Path, extension(formats[0]))
	for _, out := range report.Outputs {
		if out.Artifact.Name != want {
			continue
		}
		doc := report.Documents[0]
		return nil, RenderDocumentationOutput{
			Artifact:         out.Artifact.Name,
			Format:           string(out.Format),
			Content:          string(out.Artifact.Content),
			ProseUnavailable: doc.ProseUnavailable,
			Documentation:    doc,
		}, nil
	}
	return nil, RenderDocumentationOutput{}, fmt.Errorf("no %s artifact produced for %s", formats[0], input.Path)
}

// ListGrammars describes every grammar the extractors support.
func (s *DocsService) ListGrammars(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListGrammarsInput,
) (*mcp.CallToolResult, ListGrammarsOutput, error) {
	byGrammar := make(map[model.Grammar][]string)
	for _, ext := range extract.SupportedExtensions() {
		g, err := extract.GrammarForPath("file" + ext)
		if err != nil {
			continue
		}
		byGrammar[g] = append(byGrammar[g], ext)
	}

	out := ListGrammarsOutput{Grammars: make([]GrammarInfo, 0, len(model.Grammars))}
	for _, g := range s.lenient.Grammars() {
		out.Grammars = append(out.Grammars, GrammarInfo{
			Name:        string(g),
			Strategy:    string(g.Strategy()),
			Extensions:  byGrammar[g],
			UnknownType: g.UnknownType(),
		})
	}
	return nil, out, nil
}

func readSource(path, content string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	if content != "" {
		return []byte(content), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read path: %w", err)
	}
	return data, nil
}

func extension(f render.Format) string {
	r, err := render.New(f, render.Options{})
	if err != nil {
		return ""
	}
	return r.Extension()
}
