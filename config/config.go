// Package config loads and validates typed run configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables, in increasing priority.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by Load, e.g.
// RUNKIT_RUN_SEED=7 sets run.seed.
const EnvPrefix = "RUNKIT_"

// Load reads configuration with priority:
// 1. Environment variables (highest)
// 2. The YAML file at path (optional; empty path or missing file skipped)
// 3. Default values (lowest)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, &ConfigError{
				Category: "missing",
				Field:    "file",
				Message:  fmt.Sprintf("could not load %s", path),
				Action:   "check the path or pass an empty path to use defaults",
			}
		}
	}

	if err := loadEnv(k); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	return finish(k)
}

// LoadBytes reads configuration from in-memory YAML over the defaults,
// without consulting the environment. Intended for tests and embedded
// configs.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":  "runkit",
		"app.env":   EnvDevelopment,
		"app.debug": false,

		"log.level":  "info",
		"log.pretty": false,

		"run.project":    "",
		"run.entity":     "",
		"run.seed":       0,
		"run.output_dir": "./results",

		"tracking.base_url":    "",
		"tracking.api_key":     "",
		"tracking.timeout":     "30s",
		"tracking.max_retries": 2,
		"tracking.rate_limit":  0,
		"tracking.page_size":   50,

		"checkpoint.dir":      "./checkpoints",
		"checkpoint.compress": true,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

func loadEnv(k *koanf.Koanf) error {
	// RUNKIT_TRACKING_API_KEY -> tracking.api.key would split every
	// underscore; use double underscores for section boundaries instead:
	// RUNKIT_TRACKING__API_KEY -> tracking.api_key.
	return k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, EnvPrefix)
			key = strings.ToLower(key)
			key = strings.ReplaceAll(key, "__", ".")
			return key, value
		},
	}), nil)
}
