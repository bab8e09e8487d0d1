package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"discovery/internal/backup"
	"discovery/internal/library"
)

func newBackupCommand(ctx *commandContext) *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list, and restore catalog snapshots",
	}
	backupCmd.AddCommand(newBackupCreateCommand(ctx))
	backupCmd.AddCommand(newBackupListCommand(ctx))
	backupCmd.AddCommand(newBackupRestoreCommand(ctx))
	return backupCmd
}

func newBackupCreateCommand(ctx *commandContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the catalog database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(lib *library.Library) error {
				snapshot, err := lib.Backups().Create(cmd.Context(), lib.Store(), reason)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backup created: %s\n", snapshot.Path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "manual", "Reason recorded in the backup name")
	return cmd
}

func newBackupListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			backups, err := backup.NewManager(cfg, ctx.logger).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(out, "No backups found.")
				return nil
			}
			rows := make([][]string, 0, len(backups))
			for i, b := range backups {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					b.Timestamp.Local().Format(time.DateTime),
					b.Reason,
					strconv.FormatInt(b.Size/1024, 10),
					b.Name,
				})
			}
			fmt.Fprintf(out, "%d backup(s) available:\n", len(backups))
			fmt.Fprintln(out, renderTable([]column{
				{title: "#", align: text.AlignRight},
				{title: "Created"},
				{title: "Reason"},
				{title: "Size (KB)", align: text.AlignRight},
				{title: "File"},
			}, rows))
			return nil
		},
	}
}

func newBackupRestoreCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup>",
		Short: "Restore the catalog from a backup (number from 'backup list', name, or path)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			manager := backup.NewManager(cfg, ctx.logger)
			path, err := manager.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("%w; use 'discovery backup list' to see available backups", err)
			}
			safety, err := manager.Restore(cmd.Context(), path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if safety != nil {
				fmt.Fprintf(out, "Saved current database as %s\n", safety.Name)
			}
			fmt.Fprintf(out, "Database restored from %s\n", path)
			return nil
		},
	}
}
