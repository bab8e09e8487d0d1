package library

import (
	"context"
	"fmt"

	"discovery/internal/backup"
	"discovery/internal/catalog"
	"discovery/internal/importer"
	"discovery/internal/logging"
)

// ImportReport is the outcome of Import.
type ImportReport struct {
	importer.Result
	// Backup is the pre-import snapshot, nil when auto backup is off.
	Backup *backup.Backup
	// Pruned lists wishlist entries the import made redundant.
	Pruned []catalog.WishlistEntry
}

// Import snapshots the catalog when auto backup is on, reconciles the export
// at path, then prunes the wishlist for every category the import touched.
// Only a failed snapshot is returned as an error; import and prune problems
// are reported in the result.
func (l *Library) Import(ctx context.Context, source catalog.Source, parser importer.Parser, path string) (ImportReport, error) {
	var report ImportReport
	if l.autoBackup {
		snapshot, err := l.backups.Create(ctx, l.store, "pre_import_"+string(source))
		if err != nil {
			logging.ErrorWithContext(l.logger, "pre-import backup failed", "backup_failed",
				logging.String(logging.FieldSource, string(source)),
				logging.String(logging.FieldImpact, "import skipped; catalog unchanged"),
				logging.Error(err),
			)
			return report, fmt.Errorf("pre-import backup: %w", err)
		}
		report.Backup = &snapshot
	}

	report.Result = l.reconciler.Import(ctx, source, parser, path)

	pruned, err := l.pruner.PruneCategories(ctx, report.Categories)
	report.Pruned = pruned
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Failed to prune wishlist: %v", err))
		logging.WarnWithContext(l.logger, "wishlist prune failed after import", "wishlist_prune_failed",
			logging.String(logging.FieldSource, string(source)),
			logging.Error(err),
		)
	}
	return report, nil
}
