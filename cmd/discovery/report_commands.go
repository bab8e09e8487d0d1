package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"discovery/internal/config"
	"discovery/internal/library"
	"discovery/internal/report"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the library by category and source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(lib *library.Library) error {
				status, err := report.New(lib.Store()).Status(cmd.Context())
				if err != nil {
					return err
				}
				if format == "json" {
					return writeJSON(cmd, status)
				}
				return report.WriteText(cmd.OutOrStdout(), status)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format, categoryFlag, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the library as Markdown, JSON, or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(categoryFlag)
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(lib *library.Library) error {
				reporter := report.New(lib.Store())
				var buf bytes.Buffer
				switch strings.ToLower(format) {
				case "markdown", "md":
					err = reporter.ExportMarkdown(cmd.Context(), &buf, category)
				case "json":
					err = reporter.ExportJSON(cmd.Context(), &buf, category)
				case "yaml", "yml":
					err = reporter.ExportYAML(cmd.Context(), &buf, category)
				default:
					return fmt.Errorf("unsupported export format %q (markdown, json, yaml)", format)
				}
				if err != nil {
					return err
				}
				if output == "" {
					_, err = io.Copy(cmd.OutOrStdout(), &buf)
					return err
				}
				path, err := config.ExpandPath(output)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format (markdown, json, yaml)")
	cmd.Flags().StringVarP(&categoryFlag, "category", "c", "", "Export only one category")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}
