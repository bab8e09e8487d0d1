package config

import "discovery/internal/matching"

const (
	defaultDataDir          = "~/.local/share/discovery"
	defaultDatabaseName     = "discovery.db"
	defaultBackupDir        = "~/.local/state/discovery/backups"
	defaultLogDir           = "~/.local/state/discovery/logs"
	defaultMaxBackups       = 10
	defaultSuggestionLimit  = 5
	defaultSteamBaseURL     = "https://api.steampowered.com"
	defaultSteamTimeout     = 30
	defaultQueryLimit       = 20
	defaultErrorLimit       = 5
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

// Default returns a Config populated with repository defaults. The database
// path is left empty and derived from the data dir during normalization so
// DISCOVERY_DB can still fill it.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			BackupDir: defaultBackupDir,
			LogDir:    defaultLogDir,
		},
		Matching: Matching{
			TitleThreshold:         matching.DefaultTitleThreshold,
			StrictTitleThreshold:   matching.DefaultStrictTitleThreshold,
			CreatorThreshold:       matching.DefaultCreatorThreshold,
			StrictCreatorThreshold: matching.DefaultStrictCreatorThreshold,
			SequelCreatorThreshold: matching.DefaultSequelCreatorThreshold,
			FallbackScanCeiling:    matching.DefaultFallbackScanCeiling,
			MinSubstringLength:     matching.DefaultMinSubstringLength,
			SuggestionLimit:        defaultSuggestionLimit,
		},
		Backups: Backups{
			MaxBackups: defaultMaxBackups,
			AutoBackup: true,
		},
		Steam: Steam{
			BaseURL:        defaultSteamBaseURL,
			TimeoutSeconds: defaultSteamTimeout,
		},
		Display: Display{
			QueryLimit: defaultQueryLimit,
			ErrorLimit: defaultErrorLimit,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
