package testsupport

import (
	"path/filepath"
	"testing"

	"discovery/internal/config"
)

// ConfigOption adjusts the config built by NewConfig.
type ConfigOption func(*config.Config)

// NewConfig returns defaults rooted in a fresh temp dir, with automatic
// pre-import backups off so tests only snapshot when they ask to.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		DataDir:   filepath.Join(root, "data"),
		Database:  filepath.Join(root, "data", "discovery.db"),
		BackupDir: filepath.Join(root, "backups"),
		LogDir:    filepath.Join(root, "logs"),
	}
	cfg.Backups.AutoBackup = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAutoBackup toggles pre-import snapshots.
func WithAutoBackup(enabled bool) ConfigOption {
	return func(cfg *config.Config) { cfg.Backups.AutoBackup = enabled }
}

// WithMaxBackups overrides backup retention.
func WithMaxBackups(n int) ConfigOption {
	return func(cfg *config.Config) { cfg.Backups.MaxBackups = n }
}
