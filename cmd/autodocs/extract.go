package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const flagRaw = "raw"

func newExtractCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the normalized structure of one source file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, stdout, stderr)
			if err != nil {
				return err
			}
			raw, _ := cmd.Flags().GetBool(flagRaw)
			return a.extract(cmd, args[0], raw)
		},
	}
	cmd.Flags().Bool(flagRaw, false, "include the raw source text")
	return cmd
}

func (a *app) extract(cmd *cobra.Command, path string, raw bool) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	m, err := a.registry().Parse(cmd.Context(), path, src)
	if err != nil {
		return err
	}
	if !raw {
		m.RawText = ""
	}

	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal module: %w", err)
	}
	_, err = fmt.Fprintf(a.stdout, "%s\n", out)
	return err
}
