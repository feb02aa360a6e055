package logger

import (
	"strings"
)

// DefaultMaskValue replaces sensitive values in log output.
const DefaultMaskValue = "***"

// FilterConfig defines which log fields are considered sensitive.
type FilterConfig struct {
	// SensitiveFields contains field-name substrings that should be masked.
	SensitiveFields []string
	// MaskValue is the replacement value (default: "***").
	MaskValue string
}

// DefaultFilterConfig returns a configuration covering the credentials that
// typically leak from experiment tooling: tracking-service API keys, tokens
// and passwords.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "passwd", "pwd",
			"secret", "api_key", "apikey",
			"token", "access_token",
			"auth", "authorization",
			"credential", "credentials",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks sensitive values before they reach a log event.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a filter with the given configuration.
// A nil config selects DefaultFilterConfig.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks string values logged under a sensitive key.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.isSensitiveField(key) && value != "" {
		return f.config.MaskValue
	}
	return value
}

// FilterValue masks arbitrary values logged under a sensitive key. Nested
// string maps are filtered one level deep; other container types pass through.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	if f.isSensitiveField(key) {
		return f.config.MaskValue
	}
	if m, ok := value.(map[string]any); ok {
		return f.FilterFields(m)
	}
	return value
}

// FilterFields returns a copy of fields with sensitive entries masked.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		filtered[key] = f.FilterValue(key, value)
	}
	return filtered
}

func (f *SensitiveDataFilter) isSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, s := range f.config.SensitiveFields {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
