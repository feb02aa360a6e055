package config

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct-level validate tags and the enumerated fields.
// It returns a *ConfigError describing the first failed check.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return translateValidatorError(err)
	}

	if err := validateApp(&cfg.App); err != nil {
		return err
	}
	if err := validateLog(&cfg.Log); err != nil {
		return err
	}
	if err := validateTracking(&cfg.Tracking); err != nil {
		return err
	}

	return nil
}

// IsTrackingConfigured determines if the tracking client is intentionally
// configured. A bare default config has no base URL and no API key.
func IsTrackingConfigured(cfg *TrackingConfig) bool {
	return cfg.BaseURL != ""
}

func validateApp(cfg *AppConfig) error {
	validEnvs := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(validEnvs, cfg.Env) {
		return NewInvalidFieldError("app.env",
			"invalid environment: "+cfg.Env, validEnvs)
	}
	return nil
}

func validateLog(cfg *LogConfig) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}
	if !slices.Contains(validLevels, cfg.Level) {
		return NewInvalidFieldError("log.level",
			"invalid log level: "+cfg.Level, validLevels)
	}
	return nil
}

func validateTracking(cfg *TrackingConfig) error {
	if !IsTrackingConfigured(cfg) {
		return nil
	}
	if cfg.Timeout < 0 {
		return NewInvalidFieldError("tracking.timeout", "timeout must not be negative", nil)
	}
	return nil
}

// translateValidatorError maps the first validator.FieldError onto a
// ConfigError with the koanf-style field path.
func translateValidatorError(err error) error {
	var verrs validator.ValidationErrors
	ok := false
	if e, isVE := err.(validator.ValidationErrors); isVE {
		verrs, ok = e, true
	}
	if !ok || len(verrs) == 0 {
		return &ConfigError{Category: "invalid", Message: err.Error()}
	}

	fe := verrs[0]
	field := namespaceToKey(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field, keyToEnvVar(field), field)
	default:
		return NewInvalidFieldError(field,
			"failed validation rule '"+fe.Tag()+"'", nil)
	}
}

// namespaceToKey converts "Config.Run.OutputDir" to "run.output_dir".
func namespaceToKey(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:] // drop the root struct name
	}
	for i, p := range parts {
		parts[i] = camelToSnake(p)
	}
	return strings.Join(parts, ".")
}

// keyToEnvVar converts "run.output_dir" to "RUNKIT_RUN__OUTPUT_DIR".
func keyToEnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
