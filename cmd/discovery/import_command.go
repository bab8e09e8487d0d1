package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"discovery/internal/catalog"
	"discovery/internal/config"
	"discovery/internal/importer"
	"discovery/internal/library"
	"discovery/internal/sources"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var useAPI bool
	var setup bool

	cmd := &cobra.Command{
		Use:   "import <source> [file]",
		Short: "Import an export file (or the Steam Web API) into the catalog",
		Long: "Import items from a service export. Run 'discovery sources' to list\n" +
			"supported sources and 'discovery import <source> --setup' for export steps.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := catalog.ParseSource(args[0])
			if err != nil {
				return err
			}
			spec, err := sources.Lookup(source)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if setup {
				fmt.Fprintln(out, spec.Instructions)
				return nil
			}

			var parser importer.Parser = spec.Parser
			var path string
			switch {
			case useAPI:
				if source != catalog.SourceSteam {
					return fmt.Errorf("--api is only supported for %s", catalog.SourceSteam)
				}
				client, err := sources.NewSteamClient(ctx.config.Steam)
				if err != nil {
					return err
				}
				parser = client.Parser()
			case len(args) < 2:
				return fmt.Errorf("file path required; run 'discovery import %s --setup' for instructions", source)
			default:
				path, err = config.ExpandPath(args[1])
				if err != nil {
					return err
				}
				if _, err := os.Stat(path); err != nil {
					if errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("file not found: %s", path)
					}
					return fmt.Errorf("inspect %s: %w", path, err)
				}
			}

			return ctx.withLibrary(func(lib *library.Library) error {
				report, err := lib.Import(cmd.Context(), source, parser, path)
				if err != nil {
					return err
				}
				printImportReport(cmd, report, ctx.config.Display)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&useAPI, "api", false, "Fetch the library from the Steam Web API (steam only)")
	cmd.Flags().BoolVar(&setup, "setup", false, "Show export instructions for the source")
	return cmd
}

func printImportReport(cmd *cobra.Command, report library.ImportReport, display config.Display) {
	out := cmd.OutOrStdout()
	errorLimit := display.ErrorLimit
	fmt.Fprintf(out, "Import from %s complete:\n", report.Source)
	fmt.Fprintf(out, "  Added: %d\n", report.ItemsAdded)
	fmt.Fprintf(out, "  Updated: %d\n", report.ItemsUpdated)
	if report.Backup != nil {
		fmt.Fprintf(out, "  Backup: %s\n", report.Backup.Name)
	}
	if len(report.Errors) > 0 {
		fmt.Fprintf(out, "\n  Errors (%d):\n", len(report.Errors))
		for i, msg := range report.Errors {
			if i == errorLimit {
				fmt.Fprintf(out, "    ... and %d more\n", len(report.Errors)-errorLimit)
				break
			}
			fmt.Fprintf(out, "    - %s\n", msg)
		}
	}
	printWishlistPruned(out, report.Pruned, "import", display.QueryLimit)
}

func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "sources [source]",
		Short:       "List importable sources or show export steps for one",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				source, err := catalog.ParseSource(args[0])
				if err != nil {
					return err
				}
				spec, err := sources.Lookup(source)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, spec.Instructions)
				return nil
			}
			specs := sources.All()
			rows := make([][]string, 0, len(specs))
			for _, spec := range specs {
				rows = append(rows, []string{string(spec.Source), string(spec.Category), spec.Formats})
			}
			fmt.Fprintln(out, renderTable(plainColumns("Source", "Category", "Formats"), rows))
			return nil
		},
	}
}
