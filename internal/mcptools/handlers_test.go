package mcptools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/autodocs/internal/extract"
	"github.com/dusk-indust/autodocs/internal/model"
	"github.com/dusk-indust/autodocs/internal/prose"
	"github.com/dusk-indust/autodocs/internal/render"
)

// fixturePath returns the absolute path of a source fixture. Tests run
// from internal/mcptools/.
func fixturePath(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("../../testdata/fixtures/sources", name))
	require.NoError(t, err)
	return abs
}

// ---------------------------------------------------------------------------
// extract_module
// ---------------------------------------------------------------------------

func TestExtractModule_Content(t *testing.T) {
	svc := NewDocsService()

	_, out, err := svc.ExtractModule(context.Background(), nil, ExtractModuleInput{
		Path:    "/virtual/a.ts",
		Content: "export interface A { x: number }\n",
	})
	require.NoError(t, err)
	assert.Equal(t, model.GrammarTypeScript, out.Module.Grammar)
	assert.Equal(t, 1, out.Stats.Types)
	assert.Equal(t, 1, out.Stats.Exports)
}

func TestExtractModule_Strict(t *testing.T) {
	svc := NewDocsService()
	input := ExtractModuleInput{
		Path:    "/virtual/m.py",
		Content: "class A:\n    def a(self):\n\t\treturn 1\n",
	}

	_, _, err := svc.ExtractModule(context.Background(), nil, input)
	require.NoError(t, err, "lenient by default")

	input.Strict = true
	_, _, err = svc.ExtractModule(context.Background(), nil, input)
	var grammarErr *extract.GrammarError
	require.ErrorAs(t, err, &grammarErr)
}

func TestExtractModule_Errors(t *testing.T) {
	svc := NewDocsService()

	_, _, err := svc.ExtractModule(context.Background(), nil, ExtractModuleInput{})
	assert.ErrorContains(t, err, "path is required")

	_, _, err = svc.ExtractModule(context.Background(), nil, ExtractModuleInput{Path: "/does/not/exist.go"})
	assert.ErrorContains(t, err, "cannot read path")
}

// ---------------------------------------------------------------------------
// render_documentation
// ---------------------------------------------------------------------------

func TestRenderDocumentation_WithProse(t *testing.T) {
	svc := NewDocsService(WithProse(prose.ServiceFunc(func(_ context.Context, m model.Module) (*prose.Response, error) {
		return &prose.Response{Title: "Store", Description: "Item storage."}, nil
	})))

	_, out, err := svc.RenderDocumentation(context.Background(), nil, RenderDocumentationInput{
		Path:   fixturePath(t, "store.go"),
		Format: "json",
	})
	require.NoError(t, err)
	assert.Equal(t, "store.json", out.Artifact)
	assert.Contains(t, out.Content, `"title": "Store"`)
	assert.False(t, out.ProseUnavailable)
	assert.Len(t, out.Documentation.Functions, 4)
}

func TestRenderDocumentation_ProseFailure(t *testing.T) {
	svc := NewDocsService(WithProse(prose.ServiceFunc(func(_ context.Context, m model.Module) (*prose.Response, error) {
		return nil, &prose.ServiceError{Path: m.Path, Err: errors.New("offline")}
	})))

	_, out, err := svc.RenderDocumentation(context.Background(), nil, RenderDocumentationInput{
		Path:    "/virtual/x.js",
		Content: "export function x() {}\n",
	})
	require.NoError(t, err)
	assert.True(t, out.ProseUnavailable)
	assert.Contains(t, out.Content, "Documentation unavailable")
}

func TestRenderDocumentation_BadTemplate(t *testing.T) {
	svc := NewDocsService(WithRenderOptions(render.Options{Template: "{{title}}"}))

	_, _, err := svc.RenderDocumentation(context.Background(), nil, RenderDocumentationInput{
		Path:    "/virtual/x.js",
		Content: "export const x = 1\n",
		Format:  "html",
	})
	var tmplErr *render.TemplateError
	require.ErrorAs(t, err, &tmplErr)
}

func TestRenderDocumentation_UnknownFormat(t *testing.T) {
	_, _, err := NewDocsService().RenderDocumentation(context.Background(), nil, RenderDocumentationInput{
		Path:    "/virtual/x.js",
		Content: "export const x = 1\n",
		Format:  "pdf",
	})
	var fmtErr *render.OutputFormatError
	require.ErrorAs(t, err, &fmtErr)
}

func TestRenderDocumentation_StrictRendering(t *testing.T) {
	svc := NewDocsService(WithStrictRendering(true))
	_, _, err := svc.RenderDocumentation(context.Background(), nil, RenderDocumentationInput{
		Path:    "/virtual/u.go",
		Content: "package u\n\nfunc open() {\n",
	})
	var grammarErr *extract.GrammarError
	require.ErrorAs(t, err, &grammarErr)
}

// ---------------------------------------------------------------------------
// list_grammars
// ---------------------------------------------------------------------------

func TestListGrammars(t *testing.T) {
	_, out, err := NewDocsService().ListGrammars(context.Background(), nil, ListGrammarsInput{})
	require.NoError(t, err)

	names := make([]string, 0, len(out.Grammars))
	for _, g := range out.Grammars {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"javascript", "typescript", "python", "go"}, names)
	assert.Equal(t, []string{".cjs", ".js", ".jsx", ".mjs"}, out.Grammars[0].Extensions)
	assert.Equal(t, []string{".cts", ".mts", ".ts", ".tsx"}, out.Grammars[1].Extensions)
	assert.Equal(t, "tree", out.Grammars[1].Strategy)
	assert.Equal(t, "brace", out.Grammars[3].Strategy)
}
