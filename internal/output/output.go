// Package output persists rendered artifacts under an output directory.
// Each format gets its own subdirectory; the combined JSON artifact is
// written at the top level.
package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusk-indust/autodocs/internal/orchestrator"
	"github.com/dusk-indust/autodocs/internal/render"
)

// Writer writes artifacts below Dir.
type Writer struct {
	Dir string
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Path returns where out is written.
func (w *Writer) Path(out orchestrator.Output) string {
	if out.Format == render.FormatJSON && out.Artifact.Name == render.CombinedName {
		return filepath.Join(w.Dir, out.Artifact.Name)
	}
	return filepath.Join(w.Dir, string(out.Format), out.Artifact.Name)
}

// Write persists every output and returns the paths written. A failed
// write does not stop the remaining ones; all failures are returned
// joined.
func (w *Writer) Write(outputs []orchestrator.Output) ([]string, error) {
	var written []string
	var errs []error
	for _, out := range outputs {
		path := w.Path(out)
		if err := writeFile(path, out.Artifact.Content); err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

func writeFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
