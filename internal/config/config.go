package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects which X client the probe uses.
type Backend string

const (
	BackendAuto   Backend = "auto"   // Both, compared against each other.
	BackendNative Backend = "native" // libxcb through the rawxcb capability.
	BackendXGB    Backend = "xgb"    // Pure-Go protocol client.
)

const defaultProbeTimeout = 5 * time.Second

// LoggingConfig controls the stderr logger.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
}

// ProbeConfig tunes the probe command.
type ProbeConfig struct {
	Monitors bool   `yaml:"monitors"`          // Query RandR monitors on the xgb backend.
	Timeout  string `yaml:"timeout,omitempty"` // Go duration string, e.g. "5s".
}

// Config holds xcbprobe settings.
type Config struct {
	Display    string        `yaml:"display,omitempty"`
	XAuthority string        `yaml:"xauthority,omitempty"`
	Backend    Backend       `yaml:"backend,omitempty"`
	Logging    LoggingConfig `yaml:"logging,omitempty"`
	Probe      ProbeConfig   `yaml:"probe,omitempty"`
}

// ValidationError reports an invalid config value, with its file position
// when it came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendAuto,
		Logging: LoggingConfig{Level: "info"},
		Probe: ProbeConfig{
			Monitors: true,
			Timeout:  defaultProbeTimeout.String(),
		},
	}
}

// GetProbeTimeout returns the probe timeout, falling back to the default for
// empty or unparsable values.
func (c *Config) GetProbeTimeout() time.Duration {
	if c == nil || strings.TrimSpace(c.Probe.Timeout) == "" {
		return defaultProbeTimeout
	}
	d, err := time.ParseDuration(c.Probe.Timeout)
	if err != nil || d <= 0 {
		return defaultProbeTimeout
	}
	return d
}

// GetLogLevel maps logging.level to a slog level. Unknown values mean info.
func (c *Config) GetLogLevel() slog.Level {
	if c == nil {
		return slog.LevelInfo
	}
	level, ok := parseLogLevel(c.Logging.Level)
	if !ok {
		return slog.LevelInfo
	}
	return level
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendNative, BackendXGB:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: auto, native, xgb")}
	}
	if _, ok := parseLogLevel(c.Logging.Level); !ok {
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if strings.TrimSpace(c.Probe.Timeout) != "" {
		d, err := time.ParseDuration(c.Probe.Timeout)
		if err != nil {
			return &ValidationError{Path: "probe.timeout", Err: fmt.Errorf("invalid duration %q", c.Probe.Timeout)}
		}
		if d <= 0 {
			return &ValidationError{Path: "probe.timeout", Err: fmt.Errorf("timeout must be > 0")}
		}
	}
	if c.XAuthority != "" && !filepath.IsAbs(c.XAuthority) {
		return &ValidationError{Path: "xauthority", Err: fmt.Errorf("xauthority must be an absolute path")}
	}
	return nil
}

// Save writes the configuration to path, creating parent directories.
//
// Note: this marshals the effective config and will not preserve comments
// of a file it replaces.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
