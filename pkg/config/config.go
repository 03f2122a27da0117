// Package config provides the resolved runtime configuration for webtranscat.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Stream one-message policies.
const (
	PolicyComplete  = "complete"
	PolicyFirstByte = "first-byte"
)

// Config is the root configuration. It is resolved once at startup (file,
// environment, then flags) and read-only afterwards.
type Config struct {
	// URL is the endpoint to connect to: https for WebTransport, quic for
	// raw QUIC.
	URL string `mapstructure:"url"`

	// Insecure skips certificate verification.
	Insecure bool `mapstructure:"insecure"`

	// Unidirectional suppresses the stdin forwarder: listen only.
	Unidirectional bool `mapstructure:"unidirectional"`

	// OneMessage exits after the first complete inbound unit.
	OneMessage bool `mapstructure:"one_message"`

	// OneMessagePolicy decides when a stream satisfies one_message:
	// "complete" (full payload, the default) or "first-byte".
	OneMessagePolicy string `mapstructure:"one_message_policy"`

	// Verbosity counts -v flags: 0 warnings only, 1 info, 2+ debug.
	Verbosity int `mapstructure:"verbosity"`

	// Quiet suppresses all diagnostics except startup errors.
	Quiet bool `mapstructure:"quiet"`

	// DialTimeoutMS bounds URL resolution plus the connection handshake.
	DialTimeoutMS int `mapstructure:"dial_timeout_ms"`

	// DrainGraceMS bounds how long shutdown waits for in-flight tasks.
	DrainGraceMS int `mapstructure:"drain_grace_ms"`

	// CaptureFile, when set, records every received unit as CBOR.
	CaptureFile string `mapstructure:"capture_file"`

	// Log holds logging configuration.
	Log LogConfig `mapstructure:"log"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error. Empty derives the level from
	// Verbosity and Quiet.
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: stderr, stdout, or file paths. Defaults to stderr only:
	// stdout carries session payload data.
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool `mapstructure:"enable"`
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		OneMessagePolicy: PolicyComplete,
		DialTimeoutMS:    15000,
		DrainGraceMS:     3000,
		Log: LogConfig{
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 7,
			},
		},
	}
}

// Load reads configuration from the provided path (if non-empty), otherwise
// it searches common locations and supports environment overrides.
// Environment variables use the prefix WEBTRANSCAT and `.`/`-` become `_`.
// Example: WEBTRANSCAT_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("WEBTRANSCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("url", cfg.URL)
	v.SetDefault("insecure", cfg.Insecure)
	v.SetDefault("unidirectional", cfg.Unidirectional)
	v.SetDefault("one_message", cfg.OneMessage)
	v.SetDefault("one_message_policy", cfg.OneMessagePolicy)
	v.SetDefault("verbosity", cfg.Verbosity)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("dial_timeout_ms", cfg.DialTimeoutMS)
	v.SetDefault("drain_grace_ms", cfg.DrainGraceMS)
	v.SetDefault("capture_file", cfg.CaptureFile)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)

	if path == "" {
		if envPath := os.Getenv("WEBTRANSCAT_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("webtranscat")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".webtranscat"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.OneMessagePolicy)) {
	case "", PolicyComplete, PolicyFirstByte:
	default:
		return fmt.Errorf("invalid one_message_policy: %q", c.OneMessagePolicy)
	}

	if c.Log.Level != "" {
		switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
		case "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("invalid log.level: %q", c.Log.Level)
		}
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	return nil
}

// DialTimeout returns the handshake bound as a duration.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}

// DrainGrace returns the shutdown grace period as a duration.
func (c *Config) DrainGrace() time.Duration {
	return time.Duration(c.DrainGraceMS) * time.Millisecond
}
