package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, patterns ...string) []glob.Glob {
	t.Helper()
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		require.NoError(t, err)
		out = append(out, g)
	}
	return out
}

func touch(t *testing.T, root string, rel ...string) {
	t.Helper()
	for _, r := range rel {
		path := filepath.Join(root, filepath.FromSlash(r))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("// "+r+"\n"), 0o644))
	}
}

func TestMatcher_Excluded(t *testing.T) {
	m := NewMatcher(compile(t, "node_modules", "**/*_test.go", "gen/*.ts"))

	tests := []struct {
		rel  string
		want bool
	}{
		{"node_modules", true},
		{"web/node_modules/pkg/index.js", true},
		{"store/store_test.go", true},
		{"store/store.go", false},
		{"gen/api.ts", true},
		{"src/gen/api.ts", false},
		{".", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Excluded(tt.rel))
		})
	}
}

func TestScanner_Files(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"b/store.go",
		"a/app.TS",
		"a/util.py",
		"README.md",
		"vendor/dep/dep.go",
		"b/store_test.go",
	)

	files, err := New(compile(t, "vendor", "*_test.go")).Files([]string{root})
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "a", "app.TS"),
		filepath.Join(root, "a", "util.py"),
		filepath.Join(root, "b", "store.go"),
	}
	assert.Equal(t, want, files)
}

func TestScanner_ExplicitFileAndDuplicates(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "notes.rb", "lib/x.js")

	files, err := New(nil).Files([]string{
		filepath.Join(root, "notes.rb"),
		root,
		filepath.Join(root, "lib", "x.js"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "lib", "x.js"),
		filepath.Join(root, "notes.rb"),
	}, files, "explicit files are kept whatever their extension")
}

func TestScanner_MissingRoot(t *testing.T) {
	_, err := New(nil).Files([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}

func TestScanner_Inputs(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "m.py")

	inputs, err := New(nil).Inputs(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, filepath.Join(root, "m.py"), inputs[0].Path)
	assert.Equal(t, "// m.py\n", string(inputs[0].Content))
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, []string{"/does/not/matter.go"})
	assert.ErrorIs(t, err, context.Canceled)
}
