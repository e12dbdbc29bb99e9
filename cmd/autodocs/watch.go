package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/autodocs/internal/watch"
)

func newWatchCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Generate documentation, then regenerate whenever a source file changes",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, stdout, stderr)
			if err != nil {
				return err
			}
			return a.watch(cmd.Context(), roots(args))
		},
	}
}

func (a *app) watch(ctx context.Context, roots []string) error {
	a.regenerate(ctx, roots)

	globs, err := a.cfg.ExcludeGlobs()
	if err != nil {
		return err
	}
	w, err := watch.New(a.cfg.Watch.Debounce, globs, a.logger, func(ctx context.Context, changed []string) {
		a.logger.Info("change detected", "files", changed)
		a.regenerate(ctx, roots)
	})
	if err != nil {
		return err
	}

	a.logger.Info("watching for changes", "roots", roots, "debounce", a.cfg.Watch.Debounce)
	return w.Watch(ctx, roots)
}

// regenerate runs a full batch. Failures are logged so watching continues.
func (a *app) regenerate(ctx context.Context, roots []string) {
	report, written, err := a.generate(ctx, roots)
	if report != nil && !a.quiet {
		printSummary(a.stdout, a.runID, report, a.cfg.OutputDir, written)
	}
	if err != nil && ctx.Err() == nil {
		a.logger.Error("generation failed", "error", err)
	}
}
