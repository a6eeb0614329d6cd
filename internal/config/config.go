// Package config loads engine configuration from environment variables:
// a flat struct, one env-var prefix, os.Getenv plus strconv parsing with
// defaults, no config file format of its own.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every PHPLS_-prefixed setting the engine reads at startup.
type Config struct {
	DebounceMS        int    // PHPLS_DEBOUNCE_MS, reparse quiet window
	CachePath         string // PHPLS_CACHE_PATH, sqlite reference-cache file; empty disables the cache
	LogLevel          string // PHPLS_LOG_LEVEL, debug|info|warn|error
	MaxWorkspaceFiles int    // PHPLS_MAX_WORKSPACE_FILES, discovery cutoff, 0 means unbounded
}

// LoadConfig loads an optional .env file for local dev config (a missing
// file is not an error) and then reads PHPLS_* environment variables over
// the following defaults.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DebounceMS:        250,
		CachePath:         "",
		LogLevel:          "warn",
		MaxWorkspaceFiles: 0,
	}

	if v := os.Getenv("PHPLS_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DebounceMS = n
		}
	}
	if v := os.Getenv("PHPLS_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("PHPLS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PHPLS_MAX_WORKSPACE_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxWorkspaceFiles = n
		}
	}

	return cfg
}
