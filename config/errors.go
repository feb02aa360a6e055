package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured indicates a feature is intentionally not configured
// (not an error state). Tracking is the main optional feature: a config
// without tracking.base_url is valid, it just cannot talk to a server.
var ErrNotConfigured = errors.New("not configured")

// ConfigError represents a configuration error with actionable guidance.
// All error messages are lowercase following Go conventions.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string // error category: "missing", "invalid", "not_configured"
	Field    string // config field path (e.g., "run.output_dir", "tracking.base_url")
	Message  string // user-friendly error message (lowercase)
	Action   string // actionable instruction (lowercase)
}

// Error implements the error interface with lowercase formatting.
func (e *ConfigError) Error() string {
	var parts []string

	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}

	return strings.Join(parts, " ")
}

// Unwrap returns nil. ConfigError is a leaf error that contains all
// necessary context.
func (e *ConfigError) Unwrap() error {
	return nil
}

// NewMissingFieldError creates an error for a required missing configuration field.
func NewMissingFieldError(field, envVar, yamlPath string) *ConfigError {
	return &ConfigError{
		Category: "missing",
		Field:    field,
		Message:  "required",
		Action:   fmt.Sprintf("set %s env var or add %s to config.yaml", envVar, yamlPath),
	}
}

// NewInvalidFieldError creates an error for an invalid configuration value.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{
		Category: "invalid",
		Field:    field,
		Message:  message,
	}
	if len(validOptions) > 0 {
		err.Action = fmt.Sprintf("must be one of: %s", strings.Join(validOptions, ", "))
	}
	return err
}

// NewNotConfiguredError creates an informational error for optional features.
// This indicates the feature is intentionally not configured, not an error state.
func NewNotConfiguredError(feature, envVar, yamlPath string) *ConfigError {
	return &ConfigError{
		Category: "not_configured",
		Field:    feature,
		Message:  "(optional)",
		Action:   fmt.Sprintf("to enable: set %s env var or add %s to config.yaml", envVar, yamlPath),
	}
}

// IsNotConfigured checks if an error indicates a feature is not configured.
// Returns true for ConfigError with category "not_configured" or errors
// wrapping ErrNotConfigured.
func IsNotConfigured(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNotConfigured) {
		return true
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Category == "not_configured"
	}

	return false
}
