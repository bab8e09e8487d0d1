package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Database) == "" {
		return errors.New("paths.database must be set")
	}
	if c.Paths.Database == c.Paths.BackupDir {
		return errors.New("paths.backup_dir must differ from paths.database")
	}
	return nil
}

func (c *Config) validateMatching() error {
	thresholds := map[string]float64{
		"matching.title_threshold":          c.Matching.TitleThreshold,
		"matching.strict_title_threshold":   c.Matching.StrictTitleThreshold,
		"matching.creator_threshold":        c.Matching.CreatorThreshold,
		"matching.strict_creator_threshold": c.Matching.StrictCreatorThreshold,
		"matching.sequel_creator_threshold": c.Matching.SequelCreatorThreshold,
	}
	for key, value := range thresholds {
		if value <= 0 || value > 100 {
			return fmt.Errorf("%s must be between 1 and 100", key)
		}
	}
	if c.Matching.StrictTitleThreshold < c.Matching.TitleThreshold {
		return errors.New("matching.strict_title_threshold must be >= matching.title_threshold")
	}
	if c.Matching.FallbackScanCeiling <= 0 {
		return errors.New("matching.fallback_scan_ceiling must be positive")
	}
	if c.Matching.MinSubstringLength <= 0 {
		return errors.New("matching.min_substring_length must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
