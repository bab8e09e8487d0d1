// Package config loads, normalizes, and validates Discovery configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DISCOVERY_DB and STEAM_API_KEY. Environment values only fill settings the
// file leaves empty.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a normalized matching policy, and clear validation errors.
package config
