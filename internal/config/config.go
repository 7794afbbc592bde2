package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all shell configuration.
type Config struct {
	Shell   ShellConfig
	Logging LogConfig
	Metrics MetricsConfig
}

// ShellConfig holds interactive-shell configuration.
type ShellConfig struct {
	Prompt      string `envconfig:"SHELL_PROMPT" default:"$ " toml:"prompt"`
	Interactive bool   `envconfig:"SHELL_INTERACTIVE" default:"false" toml:"interactive"`
	ReadChunk   int    `envconfig:"SHELL_READ_CHUNK" default:"32768" toml:"read_chunk"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// MetricsConfig holds Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"false" toml:"enabled"`
	Addr    string `envconfig:"METRICS_ADDR" default:"localhost:9190" toml:"addr"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile overlays a TOML rc file on top of the environment
// configuration. A missing file is not an error; the environment
// configuration is returned unchanged.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var file struct {
		Shell   ShellConfig   `toml:"shell"`
		Logging LogConfig     `toml:"logging"`
		Metrics MetricsConfig `toml:"metrics"`
	}
	file.Shell = cfg.Shell
	file.Logging = cfg.Logging
	file.Metrics = cfg.Metrics
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.Shell = file.Shell
	cfg.Logging = file.Logging
	cfg.Metrics = file.Metrics
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Shell: ShellConfig{
			Prompt:    "$ ",
			ReadChunk: 32768,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Addr: "localhost:9190",
		},
	}
}
