package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"discovery/internal/matching"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	Database  string `toml:"database"`
	BackupDir string `toml:"backup_dir"`
	LogDir    string `toml:"log_dir"`
}

// Matching contains the duplicate detection thresholds (0-100 scores).
type Matching struct {
	TitleThreshold         float64 `toml:"title_threshold"`
	StrictTitleThreshold   float64 `toml:"strict_title_threshold"`
	CreatorThreshold       float64 `toml:"creator_threshold"`
	StrictCreatorThreshold float64 `toml:"strict_creator_threshold"`
	SequelCreatorThreshold float64 `toml:"sequel_creator_threshold"`
	FallbackScanCeiling    int     `toml:"fallback_scan_ceiling"`
	MinSubstringLength     int     `toml:"min_substring_length"`
	SuggestionLimit        int     `toml:"suggestion_limit"`
}

// Backups contains database snapshot settings.
type Backups struct {
	MaxBackups int  `toml:"max_backups"`
	AutoBackup bool `toml:"auto_backup"`
}

// Steam contains Steam Web API credentials for live library imports.
type Steam struct {
	APIKey         string `toml:"api_key"`
	SteamID        string `toml:"steam_id"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Display contains CLI output limits.
type Display struct {
	QueryLimit int `toml:"query_limit"`
	ErrorLimit int `toml:"error_limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Discovery.
//
// Configuration sections by subsystem:
//   - Paths: catalog database, backups, and logs
//   - Matching: title/creator thresholds used by imports, suggestions, and wishlist pruning
//   - Backups: snapshot retention and automatic pre-import backups
//   - Steam: Web API credentials for fetching an owned-games list
//   - Display: CLI listing and error truncation limits
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Matching Matching `toml:"matching"`
	Backups  Backups  `toml:"backups"`
	Steam    Steam    `toml:"steam"`
	Display  Display  `toml:"display"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/discovery/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("discovery.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories holding the database, backups, and logs.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, filepath.Dir(c.Paths.Database), c.Paths.BackupDir, c.Paths.LogDir}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MatchingPolicy converts the [matching] section into a normalized policy.
func (c *Config) MatchingPolicy() matching.Policy {
	return matching.Policy{
		TitleThreshold:         c.Matching.TitleThreshold,
		StrictTitleThreshold:   c.Matching.StrictTitleThreshold,
		CreatorThreshold:       c.Matching.CreatorThreshold,
		StrictCreatorThreshold: c.Matching.StrictCreatorThreshold,
		SequelCreatorThreshold: c.Matching.SequelCreatorThreshold,
		FallbackScanCeiling:    c.Matching.FallbackScanCeiling,
		MinSubstringLength:     c.Matching.MinSubstringLength,
	}.Normalized()
}

// UsesDefaultDatabase reports whether the database lives inside the data dir
// under its stock name.
func (c *Config) UsesDefaultDatabase() bool {
	return c.Paths.Database == filepath.Join(c.Paths.DataDir, defaultDatabaseName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
