// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: environment variables > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "5s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all monitor configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	TTL        TTLConfig        `yaml:"ttl"`
	Sources    SourcesConfig    `yaml:"sources"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CollectionConfig holds batch collection settings.
type CollectionConfig struct {
	// FetchTimeout bounds each individual provider fetch.
	FetchTimeout Duration `yaml:"fetch_timeout"`
	// Workers sizes the threaded-mode worker pool.
	Workers int `yaml:"workers"`
	// Interval is the sampling period used by watch mode.
	Interval Duration `yaml:"interval"`
}

// TTLConfig holds per-volatility cache lifetimes.
type TTLConfig struct {
	// Temperature covers thermal and frequency readings.
	Temperature Duration `yaml:"temperature"`
	// Usage covers fast-moving rates (CPU, memory, network, load).
	Usage Duration `yaml:"usage"`
	// Structural covers slow-moving facts (disk capacity, uptime, battery).
	Structural Duration `yaml:"structural"`
}

// SourcesConfig holds the OS-level source locations. Empty values select
// the Linux defaults baked into the providers.
type SourcesConfig struct {
	CPUTempPath    string   `yaml:"cpu_temp_path"`
	GPUTempPath    string   `yaml:"gpu_temp_path"`
	GPUTempCommand []string `yaml:"gpu_temp_command"`
	CPUFreqPath    string   `yaml:"cpu_freq_path"`
	LoadAvgPath    string   `yaml:"loadavg_path"`
	BatteryDir     string   `yaml:"battery_dir"`
	DiskPath       string   `yaml:"disk_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			FetchTimeout: Duration{5 * time.Second},
			Workers:      4,
			Interval:     Duration{15 * time.Second},
		},
		TTL: TTLConfig{
			Temperature: Duration{5 * time.Second},
			Usage:       Duration{1 * time.Second},
			Structural:  Duration{60 * time.Second},
		},
		Sources: SourcesConfig{},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	// Environment variable overrides (highest precedence)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist — use defaults + env overrides
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have the highest precedence.
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("HP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if file := os.Getenv("HP_LOG_FILE"); file != "" {
		cfg.Logging.File = file
	}
	if timeout := os.Getenv("HP_FETCH_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			cfg.Collection.FetchTimeout = Duration{parsed}
		}
	}
	if dir := os.Getenv("HP_BATTERY_DIR"); dir != "" {
		cfg.Sources.BatteryDir = dir
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Collection.Workers < 0 {
		return fmt.Errorf("collection.workers must not be negative (got %d)", c.Collection.Workers)
	}
	if c.Collection.FetchTimeout.Duration < 0 {
		return fmt.Errorf("collection.fetch_timeout must not be negative (got %s)", c.Collection.FetchTimeout.Duration)
	}
	for name, ttl := range map[string]time.Duration{
		"ttl.temperature": c.TTL.Temperature.Duration,
		"ttl.usage":       c.TTL.Usage.Duration,
		"ttl.structural":  c.TTL.Structural.Duration,
	} {
		if ttl < 0 {
			return fmt.Errorf("%s must not be negative (got %s)", name, ttl)
		}
	}
	return nil
}
