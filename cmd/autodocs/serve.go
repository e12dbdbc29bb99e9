package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/autodocs/internal/mcptools"
)

const flagAddr = "addr"

func newServeMCPCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve extraction and rendering as MCP tools over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, stdout, stderr)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString(flagAddr)
			renderOpts, err := a.renderOptions()
			if err != nil {
				return err
			}

			svc := mcptools.NewDocsService(
				mcptools.WithProse(a.proseService()),
				mcptools.WithRenderOptions(renderOpts),
				mcptools.WithStrictRendering(a.cfg.Strict),
			)
			a.logger.Info("serving MCP tools", "addr", addr)
			return mcptools.RunMCPServer(cmd.Context(), svc, addr)
		},
	}
	cmd.Flags().String(flagAddr, ":8090", "listen address")
	return cmd
}
