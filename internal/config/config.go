// Package config loads and validates application configuration for the
// Synapse pipeline. Configuration is read from ~/.synapse/config.yaml
// (overridable) and can be overridden by SYNAPSE_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Pipeline  PipelineConfig  `mapstructure:"pipeline" yaml:"pipeline"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge" yaml:"knowledge"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
}

// PipelineConfig controls the message-processing pipeline.
type PipelineConfig struct {
	// HistoryLimit is the number of recent messages included in built context.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`

	// ContentTruncate caps each history message's content (in characters)
	// when rendered into context.
	ContentTruncate int `mapstructure:"content_truncate" yaml:"content_truncate"`

	// ToolTimeout is the per-tool execution timeout.
	ToolTimeout time.Duration `mapstructure:"tool_timeout" yaml:"tool_timeout"`

	// MaxSearchResults caps memory and knowledge search results.
	MaxSearchResults int `mapstructure:"max_search_results" yaml:"max_search_results"`
}

// KnowledgeConfig controls the knowledge base backing knowledge_search.
type KnowledgeConfig struct {
	// DSN is the SQLite data source. The default ":memory:" keeps the
	// knowledge base process-resident.
	DSN string `mapstructure:"dsn" yaml:"dsn"`

	// Seed populates the built-in knowledge entries on first open.
	Seed bool `mapstructure:"seed" yaml:"seed"`
}

// LoggingConfig controls application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error").
	Level string `mapstructure:"level" yaml:"level"`

	// File is the path to an optional log file.
	File string `mapstructure:"file" yaml:"file"`

	// Pretty enables the human-readable console writer.
	Pretty bool `mapstructure:"pretty" yaml:"pretty"`
}

// SessionConfig controls session lifecycle.
type SessionConfig struct {
	// HistoryMax bounds in-session message history; oldest messages are
	// evicted on overflow.
	HistoryMax int `mapstructure:"history_max" yaml:"history_max"`

	// IdleTTL is the inactivity window after which a session is eligible
	// for reaping.
	IdleTTL time.Duration `mapstructure:"idle_ttl" yaml:"idle_ttl"`

	// EndTimeout bounds session-end detection while waiting for the
	// agent and audio channels to drain.
	EndTimeout time.Duration `mapstructure:"end_timeout" yaml:"end_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			HistoryLimit:     10,
			ContentTruncate:  200,
			ToolTimeout:      30 * time.Second,
			MaxSearchResults: 5,
		},
		Knowledge: KnowledgeConfig{
			DSN:  ":memory:",
			Seed: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		Session: SessionConfig{
			HistoryMax: 200,
			IdleTTL:    30 * time.Minute,
			EndTimeout: 10 * time.Second,
		},
	}
}

// Load reads configuration from the given path, falling back to
// ~/.synapse/config.yaml, then to defaults. Environment variables with
// the SYNAPSE_ prefix override file values (e.g. SYNAPSE_LOGGING_LEVEL).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SYNAPSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".synapse"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		// Missing default config is fine; anything else is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers built-in defaults with viper.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("pipeline.history_limit", d.Pipeline.HistoryLimit)
	v.SetDefault("pipeline.content_truncate", d.Pipeline.ContentTruncate)
	v.SetDefault("pipeline.tool_timeout", d.Pipeline.ToolTimeout)
	v.SetDefault("pipeline.max_search_results", d.Pipeline.MaxSearchResults)
	v.SetDefault("knowledge.dsn", d.Knowledge.DSN)
	v.SetDefault("knowledge.seed", d.Knowledge.Seed)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.pretty", d.Logging.Pretty)
	v.SetDefault("session.history_max", d.Session.HistoryMax)
	v.SetDefault("session.idle_ttl", d.Session.IdleTTL)
	v.SetDefault("session.end_timeout", d.Session.EndTimeout)
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Pipeline.HistoryLimit <= 0 {
		return fmt.Errorf("pipeline.history_limit must be positive, got %d", c.Pipeline.HistoryLimit)
	}
	if c.Pipeline.ContentTruncate <= 0 {
		return fmt.Errorf("pipeline.content_truncate must be positive, got %d", c.Pipeline.ContentTruncate)
	}
	if c.Pipeline.ToolTimeout <= 0 {
		return fmt.Errorf("pipeline.tool_timeout must be positive, got %s", c.Pipeline.ToolTimeout)
	}
	if c.Pipeline.MaxSearchResults <= 0 {
		return fmt.Errorf("pipeline.max_search_results must be positive, got %d", c.Pipeline.MaxSearchResults)
	}
	if c.Session.HistoryMax <= 0 {
		return fmt.Errorf("session.history_max must be positive, got %d", c.Session.HistoryMax)
	}
	if c.Knowledge.DSN == "" {
		return fmt.Errorf("knowledge.dsn must not be empty")
	}
	return nil
}

// YAML renders the configuration as YAML (for `synapse config show`).
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(out), nil
}
