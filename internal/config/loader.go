// Package config loads and validates the shellguard configuration file.
// Missing files and missing fields fall back to defaults; the loaded
// Config is treated as immutable for the process lifetime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/pkarlsen/shellguard/internal/safety"
)

// Default values for Config.
const (
	DefaultProvider       = "openai"
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultModel          = "gpt-4o-mini"
	DefaultAPITimeoutSecs = 60

	DefaultExecTimeoutSecs = 30
	DefaultGraceSecs       = 5
	DefaultShell           = "/bin/sh"

	DefaultMaxHistory = 1000
	DefaultLogLevel   = "warn"
)

// DefaultConfig returns a Config with all defaults applied, including
// the built-in safety rule sets.
func DefaultConfig() Config {
	confirm := make([]ConfirmPattern, 0)
	for _, r := range safety.DefaultConfirmRules() {
		confirm = append(confirm, ConfirmPattern{Pattern: r.Pattern, Description: r.Description})
	}

	return Config{
		API: APIConfig{
			Provider:       DefaultProvider,
			BaseURL:        DefaultBaseURL,
			Model:          DefaultModel,
			TimeoutSeconds: DefaultAPITimeoutSecs,
		},
		Security: SecurityConfig{
			ConfirmDangerousCommands: true,
			BlockedCommands:          safety.DefaultBlockedCommands(),
			ConfirmPatterns:          confirm,
			InteractivePrograms:      safety.DefaultInteractivePrograms(),
			OnDeclined:               OnDeclinedSkip,
		},
		Exec: ExecConfig{
			TimeoutSeconds: DefaultExecTimeoutSecs,
			GraceSeconds:   DefaultGraceSecs,
			Shell:          DefaultShell,
		},
		UI: UIConfig{
			HistoryFile: "~/.shellguard_history.yaml",
			MaxHistory:  DefaultMaxHistory,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// DefaultPath returns the default config file location,
// ~/.shellguard/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".shellguard", "config.yaml")
	}
	return filepath.Join(home, ".shellguard", "config.yaml")
}

// Load reads and parses the config file at path. An empty path means
// DefaultPath. A missing file yields the default config; a present but
// malformed or invalid file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that all config values are usable.
func Validate(cfg *Config) error {
	if cfg.API.TimeoutSeconds <= 0 {
		return ValidationError{Field: "api.timeout_seconds", Message: "must be positive"}
	}
	if cfg.Exec.TimeoutSeconds <= 0 {
		return ValidationError{Field: "exec.timeout_seconds", Message: "must be positive"}
	}
	if cfg.Exec.GraceSeconds <= 0 {
		return ValidationError{Field: "exec.grace_seconds", Message: "must be positive"}
	}
	if cfg.Exec.Shell == "" {
		return ValidationError{Field: "exec.shell", Message: "required field is empty"}
	}
	if cfg.UI.MaxHistory <= 0 {
		return ValidationError{Field: "ui.max_history", Message: "must be positive"}
	}
	if cfg.Security.OnDeclined != OnDeclinedSkip && cfg.Security.OnDeclined != OnDeclinedAbort {
		return ValidationError{
			Field:   "security.on_declined",
			Message: fmt.Sprintf("must be %q or %q", OnDeclinedSkip, OnDeclinedAbort),
		}
	}
	for _, p := range cfg.Security.ConfirmPatterns {
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return ValidationError{
				Field:   "security.confirm_patterns",
				Message: fmt.Sprintf("pattern %q does not compile: %v", p.Pattern, err),
			}
		}
	}
	return nil
}

// ConfirmRules converts the configured confirmation patterns into
// classifier rules, preserving order.
func (s SecurityConfig) ConfirmRules() []safety.ConfirmRule {
	rules := make([]safety.ConfirmRule, 0, len(s.ConfirmPatterns))
	for _, p := range s.ConfirmPatterns {
		rules = append(rules, safety.ConfirmRule{Pattern: p.Pattern, Description: p.Description})
	}
	return rules
}

// ExpandPath resolves a leading ~ in a configured path against the
// current user's home directory.
func ExpandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
