package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that can fill settings the
// config file leaves empty.
type envOverrides struct {
	Database    string `env:"DISCOVERY_DB"`
	LogLevel    string `env:"DISCOVERY_LOG_LEVEL"`
	SteamAPIKey string `env:"STEAM_API_KEY"`
	SteamID     string `env:"STEAM_ID"`
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	fill := func(dst *string, value string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = strings.TrimSpace(value)
		}
	}
	fill(&c.Paths.Database, overrides.Database)
	fill(&c.Logging.Level, overrides.LogLevel)
	fill(&c.Steam.APIKey, overrides.SteamAPIKey)
	fill(&c.Steam.SteamID, overrides.SteamID)
	return nil
}
