// Package config provides configuration management for protodig.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents protodig's batch-run configuration, letting a
// directory-walk invocation avoid repeating flags on the command line.
type Config struct {
	Scanner    ScannerConfig    `yaml:"scanner"`
	Writer     WriterConfig     `yaml:"writer"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ScannerConfig bounds the boundary-recovery scan.
type ScannerConfig struct {
	MaxResults        int `yaml:"max_results"`
	MinDescriptorSize int `yaml:"min_descriptor_size"`
	MaxDescriptorSize int `yaml:"max_descriptor_size"`
}

// WriterConfig controls how reconstructed .proto sources are rendered.
type WriterConfig struct {
	IndentStr string `yaml:"indent"`
	// Backend selects the rendering backend: "structural" (the default,
	// always-succeeds descriptorpb walker) or "protoprint" (the optional
	// jhump/protoreflect-backed pretty-printer for resolvable descriptors).
	Backend string `yaml:"backend"`
}

// OutputConfig controls where and how extracted files land on disk.
type OutputConfig struct {
	Directory        string `yaml:"directory"`
	ConflictStrategy string `yaml:"conflict_strategy"` // hash-suffix, source-suffix, skip-conflicts
	Force            bool   `yaml:"force"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // json, text
	LogFile string `yaml:"log_file"`
}

// MetricsConfig controls the optional Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultConfig returns protodig's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scanner: ScannerConfig{
			MaxResults:        0,
			MinDescriptorSize: 10,
			MaxDescriptorSize: 10 * 1024 * 1024,
		},
		Writer: WriterConfig{
			IndentStr: "  ",
			Backend:   "structural",
		},
		Output: OutputConfig{
			Directory:        ".",
			ConflictStrategy: "hash-suffix",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Load loads configuration from a YAML file and environment variables.
// Environment variables override file configuration. An empty path skips
// the file read and returns defaults plus env overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		// #nosec G304 -- path is from command-line argument, user-controlled input is expected
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PROTODIG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PROTODIG_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("PROTODIG_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("PROTODIG_CONFLICT_STRATEGY"); v != "" {
		c.Output.ConflictStrategy = v
	}
	if v := os.Getenv("PROTODIG_MAX_DESCRIPTOR_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scanner.MaxDescriptorSize = n
		}
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.Scanner.MinDescriptorSize < 0 {
		return fmt.Errorf("scanner.min_descriptor_size must be >= 0")
	}
	if c.Scanner.MaxDescriptorSize <= 0 {
		return fmt.Errorf("scanner.max_descriptor_size must be > 0")
	}
	if c.Scanner.MinDescriptorSize > c.Scanner.MaxDescriptorSize {
		return fmt.Errorf("scanner.min_descriptor_size must be <= max_descriptor_size")
	}

	validStrategies := map[string]bool{
		"hash-suffix": true, "source-suffix": true, "skip-conflicts": true,
	}
	if !validStrategies[c.Output.ConflictStrategy] {
		return fmt.Errorf("invalid conflict strategy: %s", c.Output.ConflictStrategy)
	}

	validBackends := map[string]bool{"structural": true, "protoprint": true}
	if !validBackends[c.Writer.Backend] {
		return fmt.Errorf("invalid writer backend: %s", c.Writer.Backend)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}
