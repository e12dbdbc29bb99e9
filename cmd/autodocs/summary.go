package main

import (
	"fmt"
	"io"

	"github.com/dusk-indust/autodocs/internal/orchestrator"
)

// printSummary writes the end-of-run report shown to users.
func printSummary(w io.Writer, runID string, report *orchestrator.Report, outputDir string, written int) {
	fmt.Fprintf(w, "Run %s: %d attempted, %d succeeded, %d skipped\n",
		runID, report.Attempted, report.Succeeded, len(report.Skipped))

	for _, s := range report.Skipped {
		fmt.Fprintf(w, "  - skipped %s: %s\n", s.Path, s.Reason)
	}
	for _, path := range report.ProseUnavailable {
		fmt.Fprintf(w, "  ! prose unavailable for %s\n", path)
	}
	for _, f := range report.RenderFailures {
		if f.Path == "" {
			fmt.Fprintf(w, "  ✗ %s disabled: %v\n", f.Format, f.Err)
			continue
		}
		fmt.Fprintf(w, "  ✗ %s failed for %s: %v\n", f.Format, f.Path, f.Err)
	}

	if written > 0 {
		fmt.Fprintf(w, "✓ Wrote %d artifacts to %s\n", written, outputDir)
	}
}
