package extract

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/autodocs/internal/model"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// readFixture reads a test fixture file relative to the project root.
// Tests run from internal/extract/, so the relative path is ../../testdata/...
func readFixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return data
}

// parseFixture extracts and normalizes one of the source fixtures.
func parseFixture(t *testing.T, name string) model.Module {
	t.Helper()
	src := readFixture(t, "testdata/fixtures/sources/"+name)
	m, err := NewRegistry(Options{}).Parse(context.Background(), "/src/"+name, src)
	require.NoError(t, err)
	return m
}

func parseSource(t *testing.T, path, src string, opts Options) model.Module {
	t.Helper()
	m, err := NewRegistry(opts).Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return m
}

func findFunction(t *testing.T, m model.Module, name string) model.FunctionSymbol {
	t.Helper()
	for _, fn := range m.Functions() {
		if fn.Name == name {
			return fn
		}
	}
	require.Failf(t, "function not found", "%s in %s", name, m.Path)
	return model.FunctionSymbol{}
}

func findType(t *testing.T, m model.Module, name string) model.TypeSymbol {
	t.Helper()
	for _, ty := range m.Types() {
		if ty.Name == name {
			return ty
		}
	}
	require.Failf(t, "type not found", "%s in %s", name, m.Path)
	return model.TypeSymbol{}
}

func findMethod(t *testing.T, ty model.TypeSymbol, name string) model.FunctionSymbol {
	t.Helper()
	for _, fn := range ty.Methods {
		if fn.Name == name {
			return fn
		}
	}
	require.Failf(t, "method not found", "%s on %s", name, ty.Name)
	return model.FunctionSymbol{}
}

func findProperty(t *testing.T, ty model.TypeSymbol, name string) model.Property {
	t.Helper()
	for _, p := range ty.Properties {
		if p.Name == name {
			return p
		}
	}
	require.Failf(t, "property not found", "%s on %s", name, ty.Name)
	return model.Property{}
}

func symbolNames(m model.Module) []string {
	names := make([]string, 0, len(m.Symbols))
	for _, s := range m.Symbols {
		names = append(names, s.Name())
	}
	return names
}

func exportsByName(m model.Module) map[string]model.ExportEdge {
	out := make(map[string]model.ExportEdge, len(m.Exports))
	for _, e := range m.Exports {
		out[e.Name] = e
	}
	return out
}

func assertSpan(t *testing.T, start, end, gotStart, gotEnd int, name string) {
	t.Helper()
	assert.Equal(t, start, gotStart, "StartLine of %s", name)
	assert.Equal(t, end, gotEnd, "EndLine of %s", name)
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestGrammarForPath(t *testing.T) {
	tests := []struct {
		path string
		want model.Grammar
	}{
		{"a/b.js", model.GrammarJavaScript},
		{"a/b.mjs", model.GrammarJavaScript},
		{"a/b.JSX", model.GrammarJavaScript},
		{"a/b.ts", model.GrammarTypeScript},
		{"a/b.tsx", model.GrammarTypeScript},
		{"a/b.py", model.GrammarPython},
		{"a/b.pyi", model.GrammarPython},
		{"a/b.go", model.GrammarGo},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := GrammarForPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrammarForPath_Unsupported(t *testing.T) {
	for _, path := range []string{"main.rs", "README", "notes.txt"} {
		_, err := GrammarForPath(path)
		var unsupported *UnsupportedGrammarError
		require.ErrorAs(t, err, &unsupported, path)
		assert.Equal(t, path, unsupported.Path)
	}
}

func TestRegistry_Grammars(t *testing.T) {
	r := NewRegistry(Options{})
	assert.Equal(t, model.Grammars, r.Grammars())
	assert.Contains(t, SupportedExtensions(), ".go")
	assert.Len(t, SupportedExtensions(), 11)
}

func TestRegistry_UnsupportedExtension(t *testing.T) {
	_, err := NewRegistry(Options{}).Parse(context.Background(), "/src/lib.rs", []byte("fn main() {}"))
	var unsupported *UnsupportedGrammarError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, ".rs", unsupported.Ext)
}

func TestRegistry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRegistry(Options{}).Parse(ctx, "/src/a.go", []byte("package a\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_RawTextPreserved(t *testing.T) {
	src := "package a\n\nfunc A() {}\n"
	m := parseSource(t, "/src/a.go", src, Options{})
	assert.Equal(t, src, m.RawText)
	assert.Equal(t, "/src/a.go", m.Path)
	assert.Equal(t, model.GrammarGo, m.Grammar)
}

// ---------------------------------------------------------------------------
// Properties shared by every grammar
// ---------------------------------------------------------------------------

func TestParse_Idempotent(t *testing.T) {
	for _, name := range []string{"shapes.ts", "widgets.js", "inventory.py", "store.go"} {
		t.Run(name, func(t *testing.T) {
			first := parseFixture(t, name)
			second := parseFixture(t, name)

			a, err := json.Marshal(first)
			require.NoError(t, err)
			b, err := json.Marshal(second)
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b))

			again, err := json.Marshal(model.Normalize(first))
			require.NoError(t, err)
			assert.Equal(t, string(a), string(again), "normalizing twice changes nothing")
		})
	}
}

func TestParse_NoEmptyTypes(t *testing.T) {
	for _, name := range []string{"shapes.ts", "widgets.js", "inventory.py", "store.go"} {
		t.Run(name, func(t *testing.T) {
			m := parseFixture(t, name)
			for _, fn := range m.Functions() {
				assert.NotEmpty(t, fn.Name)
				assert.NotEmpty(t, fn.ReturnType, "return type of %s", fn.Name)
				for _, p := range fn.Parameters {
					assert.NotEmpty(t, p.Type, "type of %s.%s", fn.Name, p.Name)
				}
				assert.LessOrEqual(t, fn.StartLine, fn.EndLine, fn.Name)
			}
			for _, ty := range m.Types() {
				assert.NotEmpty(t, ty.Name)
				assert.LessOrEqual(t, ty.StartLine, ty.EndLine, ty.Name)
				for _, p := range ty.Properties {
					assert.NotEmpty(t, p.Type, "type of %s.%s", ty.Name, p.Name)
				}
			}
		})
	}
}

func TestParse_ImportsInSourceOrder(t *testing.T) {
	for _, name := range []string{"shapes.ts", "widgets.js", "inventory.py", "store.go"} {
		m := parseFixture(t, name)
		for i := 1; i < len(m.Imports); i++ {
			assert.LessOrEqual(t, m.Imports[i-1].StartLine, m.Imports[i].StartLine, name)
		}
	}
}
