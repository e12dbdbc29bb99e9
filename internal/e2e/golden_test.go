//go:build e2e

package e2e

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/autodocs/internal/extract"
	"github.com/dusk-indust/autodocs/internal/orchestrator"
	"github.com/dusk-indust/autodocs/internal/output"
	"github.com/dusk-indust/autodocs/internal/prose"
	"github.com/dusk-indust/autodocs/internal/render"
	"github.com/dusk-indust/autodocs/internal/scan"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

// sourcesDir returns the path to the multi-language source fixtures.
func sourcesDir() string {
	return filepath.Join("..", "..", "testdata", "fixtures", "sources")
}

// goldenSourcesDir returns the path to the fixtures the golden files are
// generated from.
func goldenSourcesDir() string {
	return filepath.Join("..", "..", "testdata", "fixtures", "golden")
}

// loadFixtures scans dir and renames every input to a path relative to it
// so artifacts do not depend on where the repository is checked out.
func loadFixtures(t *testing.T, dir string) []orchestrator.Input {
	t.Helper()

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)

	inputs, err := scan.New(nil).Inputs(context.Background(), []string{abs})
	require.NoError(t, err)
	require.NotEmpty(t, inputs)

	for i := range inputs {
		rel, err := filepath.Rel(abs, inputs[i].Path)
		require.NoError(t, err)
		inputs[i].Path = filepath.ToSlash(filepath.Join("sources", rel))
	}
	return inputs
}

// runPipelineForGolden documents the fixtures offline with a fixed clock
// and returns the output directory.
func runPipelineForGolden(t *testing.T) string {
	t.Helper()

	cfg := orchestrator.Config{
		Workers: 2,
		Formats: render.AllFormats,
		Render: render.Options{
			Now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		},
	}
	pipeline, err := orchestrator.NewPipeline(cfg, extract.NewRegistry(extract.Options{}), prose.Offline{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := pipeline.Run(ctx, loadFixtures(t, goldenSourcesDir()))
	require.NoError(t, err)
	require.Empty(t, report.Skipped)
	require.Empty(t, report.RenderFailures)

	outputDir := t.TempDir()
	_, err = output.NewWriter(outputDir).Write(report.Outputs)
	require.NoError(t, err)
	return outputDir
}

// artifactFiles lists every file under dir relative to it.
func artifactFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	require.NoError(t, err)
	return files
}

// TestGolden compares every artifact against its golden file.
func TestGolden(t *testing.T) {
	outputDir := runPipelineForGolden(t)
	gDir := goldenDir()

	files := artifactFiles(t, outputDir)
	assert.Len(t, files, 3+3+1, "per-file artifacts, indexes and the combined artifact")

	for _, rel := range files {
		t.Run(rel, func(t *testing.T) {
			golden, err := os.ReadFile(filepath.Join(gDir, rel))
			require.NoError(t, err, "golden file %s missing; run TestUpdateGolden with -update", rel)

			actual, err := os.ReadFile(filepath.Join(outputDir, rel))
			require.NoError(t, err)

			assert.Equal(t, string(golden), string(actual),
				"output for %s does not match golden file", rel)
		})
	}
}

// TestGolden_Deterministic runs the batch twice and expects byte-identical
// artifacts.
func TestGolden_Deterministic(t *testing.T) {
	first := runPipelineForGolden(t)
	second := runPipelineForGolden(t)

	for _, rel := range artifactFiles(t, first) {
		a, err := os.ReadFile(filepath.Join(first, rel))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, rel))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), "%s differs between runs", rel)
	}
}

// TestUpdateGolden regenerates golden files from the current pipeline output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	outputDir := runPipelineForGolden(t)
	gDir := goldenDir()

	for _, rel := range artifactFiles(t, outputDir) {
		data, err := os.ReadFile(filepath.Join(outputDir, rel))
		require.NoError(t, err)

		dest := filepath.Join(gDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(dest), 0o755))
		require.NoError(t, os.WriteFile(dest, data, 0o644))

		t.Logf("updated %s", rel)
	}
}
