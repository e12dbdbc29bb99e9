package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/autodocs/internal/orchestrator"
	"github.com/dusk-indust/autodocs/internal/output"
	"github.com/dusk-indust/autodocs/internal/scan"
)

func newGenerateCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [paths...]",
		Short: "Generate documentation for the files under paths (default: .)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, stdout, stderr)
		},
	}
}

func runGenerate(cmd *cobra.Command, args []string, stdout, stderr io.Writer) error {
	a, err := newApp(cmd, stdout, stderr)
	if err != nil {
		return err
	}
	report, written, err := a.generate(cmd.Context(), roots(args))
	if report != nil && !a.quiet {
		printSummary(stdout, a.runID, report, a.cfg.OutputDir, written)
	}
	return err
}

// generate runs one batch over roots and writes its artifacts. Per-file
// failures are in the report; the error is set only when the batch as a
// whole failed.
func (a *app) generate(ctx context.Context, roots []string) (*orchestrator.Report, int, error) {
	globs, err := a.cfg.ExcludeGlobs()
	if err != nil {
		return nil, 0, err
	}
	inputs, err := scan.New(globs).Inputs(ctx, roots)
	if err != nil {
		return nil, 0, err
	}
	formats, err := a.cfg.RenderFormats()
	if err != nil {
		return nil, 0, err
	}
	renderOpts, err := a.renderOptions()
	if err != nil {
		return nil, 0, err
	}

	reporter := orchestrator.NewProgressReporter(len(inputs) * 8)
	done := a.consumeProgress(reporter.Subscribe(), len(inputs))

	p, err := orchestrator.NewPipeline(
		orchestrator.Config{Workers: a.cfg.Workers, Formats: formats, Render: renderOpts},
		a.registry(),
		a.proseService(),
		orchestrator.WithProgress(reporter.Emit),
	)
	if err != nil {
		reporter.Close()
		<-done
		return nil, 0, err
	}

	a.logger.Info("generating documentation", "files", len(inputs), "formats", formats, "workers", a.cfg.Workers)
	report, runErr := p.Run(ctx, inputs)
	reporter.Close()
	<-done

	if errors.Is(runErr, orchestrator.ErrNoInput) {
		return nil, 0, fmt.Errorf("%w under %v", runErr, roots)
	}
	if report == nil {
		return nil, 0, runErr
	}

	paths, writeErr := output.NewWriter(a.cfg.OutputDir).Write(report.Outputs)
	for _, path := range paths {
		a.logger.Debug("wrote artifact", "path", path)
	}
	a.logger.Info("run complete",
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"skipped", len(report.Skipped),
		"artifacts", len(paths),
	)
	if writeErr != nil {
		return report, len(paths), fmt.Errorf("write artifacts: %w", writeErr)
	}
	return report, len(paths), runErr
}

func roots(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}
