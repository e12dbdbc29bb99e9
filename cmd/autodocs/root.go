package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/autodocs/internal/config"
	"github.com/dusk-indust/autodocs/internal/extract"
	"github.com/dusk-indust/autodocs/internal/prose"
	"github.com/dusk-indust/autodocs/internal/render"
)

const flagQuiet = "quiet"

// app carries what every command needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	runID  string
	quiet  bool
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "autodocs [paths...]",
		Short: "Generate documentation from JavaScript, TypeScript, Python and Go sources",
		Long: `autodocs extracts functions, types, imports and exports from source files,
merges them with prose from an optional documentation service and writes
Markdown, HTML and JSON documentation.

Examples:
  # Document the current directory
  autodocs

  # Only Markdown, into ./site
  autodocs generate src -f markdown -o site

  # Regenerate on every change
  autodocs watch src
`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().BoolP(flagQuiet, "q", false, "disable the progress bar and the summary")

	root.AddCommand(
		newGenerateCmd(stdout, stderr),
		newExtractCmd(stdout, stderr),
		newWatchCmd(stdout, stderr),
		newServeMCPCmd(stdout, stderr),
		newVersionCmd(stdout),
	)
	return root
}

// newApp resolves the configuration for the working directory and sets up
// logging for one command invocation.
func newApp(cmd *cobra.Command, stdout, stderr io.Writer) (*app, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Resolve(wd, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	quiet, _ := cmd.Flags().GetBool(flagQuiet)

	runID := uuid.New().String()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	})).With("run", runID)
	slog.SetDefault(logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		runID:  runID,
		quiet:  quiet,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// proseService returns the HTTP prose client when an endpoint is
// configured and the offline service otherwise.
func (a *app) proseService() prose.Service {
	if a.cfg.Prose.Endpoint == "" {
		return prose.Offline{}
	}
	return prose.NewHTTPClient(a.cfg.Prose.Endpoint, prose.WithTimeout(a.cfg.Prose.Timeout))
}

func (a *app) registry() *extract.Registry {
	return extract.NewRegistry(extract.Options{Strict: a.cfg.Strict})
}

func (a *app) renderOptions() (render.Options, error) {
	tmpl, err := a.cfg.Template()
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{Template: tmpl}, nil
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, version)
		},
	}
}
