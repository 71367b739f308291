package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10, cfg.Pipeline.HistoryLimit)
	assert.Equal(t, 200, cfg.Pipeline.ContentTruncate)
	assert.Equal(t, 30*time.Second, cfg.Pipeline.ToolTimeout)
	assert.Equal(t, 5, cfg.Pipeline.MaxSearchResults)
	assert.Equal(t, ":memory:", cfg.Knowledge.DSN)
	assert.True(t, cfg.Knowledge.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Pipeline, cfg.Pipeline)
}

func TestLoad_ExplicitMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
pipeline:
  history_limit: 4
  tool_timeout: 5s
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Pipeline.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.ToolTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys keep defaults.
	assert.Equal(t, 200, cfg.Pipeline.ContentTruncate)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero history limit", func(c *Config) { c.Pipeline.HistoryLimit = 0 }},
		{"negative truncate", func(c *Config) { c.Pipeline.ContentTruncate = -1 }},
		{"zero tool timeout", func(c *Config) { c.Pipeline.ToolTimeout = 0 }},
		{"zero max results", func(c *Config) { c.Pipeline.MaxSearchResults = 0 }},
		{"zero session history", func(c *Config) { c.Session.HistoryMax = 0 }},
		{"empty dsn", func(c *Config) { c.Knowledge.DSN = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestYAML(t *testing.T) {
	out, err := Default().YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "history_limit: 10")
}
