// Package config loads hunlaw settings from a YAML file and HUNLAW_*
// environment variables. The environment wins over the file; command line
// flags are applied on top by the caller.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config holds the settings shared by the hunlaw commands.
type Config struct {
	// CachePath is the SQLite result cache. Empty disables caching.
	CachePath string `yaml:"cache_path"`
	// Abbreviations is a directory of abbreviation tables.
	Abbreviations string `yaml:"abbreviations"`
	Jobs          int    `yaml:"jobs"`
	MaxDepth      int    `yaml:"max_depth"`
	Debug         bool   `yaml:"debug"`
	LogLevel      string `yaml:"log_level"`
	Format        string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Jobs:     1,
		LogLevel: "info",
		Format:   FormatYAML,
	}
}

// EnvVar describes an environment variable read by ApplyEnv.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap lists the environment variables and their values in c.
func (c Config) AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"HUNLAW_CACHE":         {"HUNLAW_CACHE", c.CachePath, "Path of the result cache database"},
		"HUNLAW_ABBREVIATIONS": {"HUNLAW_ABBREVIATIONS", c.Abbreviations, "Directory of abbreviation tables"},
		"HUNLAW_JOBS":          {"HUNLAW_JOBS", c.Jobs, "Number of Acts parsed in parallel (default 1)"},
		"HUNLAW_MAX_DEPTH":     {"HUNLAW_MAX_DEPTH", c.MaxDepth, "Maximum grammar rule nesting"},
		"HUNLAW_DEBUG":         {"HUNLAW_DEBUG", c.Debug, "Show additional debug information (e.g. HUNLAW_DEBUG=1)"},
		"HUNLAW_LOG_LEVEL":     {"HUNLAW_LOG_LEVEL", c.LogLevel, "Log level: trace, debug, info, warn or error"},
		"HUNLAW_FORMAT":        {"HUNLAW_FORMAT", c.Format, "Output format, yaml or json"},
	}
}

// Load reads the file at path over the defaults and applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

// ApplyEnv overrides c with the HUNLAW_* variables that are set. Invalid
// numbers are logged and ignored.
func (c *Config) ApplyEnv() {
	if v := clean("HUNLAW_CACHE"); v != "" {
		c.CachePath = v
	}
	if v := clean("HUNLAW_ABBREVIATIONS"); v != "" {
		c.Abbreviations = v
	}
	if v := clean("HUNLAW_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			slog.Error("invalid setting must be greater than zero", "HUNLAW_JOBS", v, "error", err)
		} else {
			c.Jobs = n
		}
	}
	if v := clean("HUNLAW_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			slog.Error("invalid setting", "HUNLAW_MAX_DEPTH", v, "error", err)
		} else {
			c.MaxDepth = n
		}
	}
	if v := clean("HUNLAW_DEBUG"); v != "" {
		d, err := strconv.ParseBool(v)
		if err == nil {
			c.Debug = d
		} else {
			c.Debug = true
		}
	}
	if v := clean("HUNLAW_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := clean("HUNLAW_FORMAT"); v != "" {
		c.Format = strings.ToLower(v)
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch c.Format {
	case FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("format %q: must be %s or %s", c.Format, FormatYAML, FormatJSON)
	}
	if c.Jobs <= 0 {
		return fmt.Errorf("jobs must be greater than zero, got %d", c.Jobs)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}

// Level returns the log level, debug when Debug is set.
func (c Config) Level() string {
	if c.Debug && c.LogLevel != "trace" {
		return "debug"
	}
	return c.LogLevel
}
