package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PHPLS_DEBOUNCE_MS", "")
	t.Setenv("PHPLS_CACHE_PATH", "")
	t.Setenv("PHPLS_LOG_LEVEL", "")
	t.Setenv("PHPLS_MAX_WORKSPACE_FILES", "")

	cfg := LoadConfig()
	assert.Equal(t, 250, cfg.DebounceMS)
	assert.Equal(t, "", cfg.CachePath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 0, cfg.MaxWorkspaceFiles)
}

func TestLoadConfigReadsEnv(t *testing.T) {
	t.Setenv("PHPLS_DEBOUNCE_MS", "500")
	t.Setenv("PHPLS_CACHE_PATH", "/tmp/phpls.db")
	t.Setenv("PHPLS_LOG_LEVEL", "DEBUG")
	t.Setenv("PHPLS_MAX_WORKSPACE_FILES", "1000")

	cfg := LoadConfig()
	assert.Equal(t, 500, cfg.DebounceMS)
	assert.Equal(t, "/tmp/phpls.db", cfg.CachePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.MaxWorkspaceFiles)
}

func TestLoadConfigIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("PHPLS_DEBOUNCE_MS", "not-a-number")
	cfg := LoadConfig()
	assert.Equal(t, 250, cfg.DebounceMS)
}
