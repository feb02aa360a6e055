package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the typed configuration for an experiment run. It replaces the
// loosely-shaped dict configs of ad-hoc training scripts: every consumer
// reads a named field instead of probing a map. Unknown keys in the sources
// are ignored; missing keys keep their defaults.
type Config struct {
	App        AppConfig        `koanf:"app"`
	Log        LogConfig        `koanf:"log"`
	Run        RunConfig        `koanf:"run"`
	Tracking   TrackingConfig   `koanf:"tracking"`
	Checkpoint CheckpointConfig `koanf:"checkpoint"`

	// Grid holds the hyperparameter search axes. Values stay untyped so a
	// single axis can mix ints, floats, and strings.
	Grid map[string][]any `koanf:"grid"`

	// k holds the underlying koanf instance for access to custom keys
	k *koanf.Koanf `json:"-" yaml:"-" mapstructure:"-"`
}

type AppConfig struct {
	Name  string `koanf:"name" validate:"required"`
	Env   string `koanf:"env"`
	Debug bool   `koanf:"debug"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

// RunConfig identifies one experiment run and where its outputs land.
type RunConfig struct {
	Project   string `koanf:"project"`
	Entity    string `koanf:"entity"`
	Seed      int64  `koanf:"seed" validate:"gte=0"`
	OutputDir string `koanf:"output_dir" validate:"required"`
}

// TrackingConfig configures the experiment-tracking API client.
type TrackingConfig struct {
	BaseURL    string        `koanf:"base_url" validate:"omitempty,url"`
	APIKey     string        `koanf:"api_key"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries" validate:"gte=0"`
	RateLimit  float64       `koanf:"rate_limit" validate:"gte=0"`
	PageSize   int           `koanf:"page_size" validate:"gte=0"`
}

// CheckpointConfig configures training-state persistence.
type CheckpointConfig struct {
	Dir      string `koanf:"dir"`
	Compress bool   `koanf:"compress"`
}
