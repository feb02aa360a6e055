package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadBytes(nil)
	require.NoError(t, err)

	assert.Equal(t, "runkit", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "./results", cfg.Run.OutputDir)
	assert.Equal(t, int64(0), cfg.Run.Seed)
	assert.Equal(t, 30*time.Second, cfg.Tracking.Timeout)
	assert.Equal(t, 2, cfg.Tracking.MaxRetries)
	assert.Equal(t, 50, cfg.Tracking.PageSize)
	assert.Equal(t, "./checkpoints", cfg.Checkpoint.Dir)
	assert.True(t, cfg.Checkpoint.Compress)
}

func TestLoadBytesOverridesDefaults(t *testing.T) {
	yaml := []byte(`
app:
  name: mnist-sweep
  env: production
run:
  project: vision
  entity: lab
  seed: 42
  output_dir: /tmp/results
tracking:
  base_url: https://track.example.com
  api_key: secret
  timeout: 5s
  max_retries: 4
grid:
  lr: [0.1, 0.01]
  batch_size: [32, 64]
`)

	cfg, err := LoadBytes(yaml)
	require.NoError(t, err)

	assert.Equal(t, "mnist-sweep", cfg.App.Name)
	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.Equal(t, "vision", cfg.Run.Project)
	assert.Equal(t, int64(42), cfg.Run.Seed)
	assert.Equal(t, "https://track.example.com", cfg.Tracking.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Tracking.Timeout)
	assert.Equal(t, 4, cfg.Tracking.MaxRetries)
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Len(t, cfg.Grid, 2)
	assert.Len(t, cfg.Grid["lr"], 2)
}

func TestLoadBytesValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		field   string
		message string
	}{
		{
			name:  "empty_app_name",
			yaml:  "app:\n  name: \"\"\n",
			field: "app.name",
		},
		{
			name:    "invalid_environment",
			yaml:    "app:\n  env: prod\n",
			field:   "app.env",
			message: "invalid environment",
		},
		{
			name:    "invalid_log_level",
			yaml:    "log:\n  level: loud\n",
			field:   "log.level",
			message: "invalid log level",
		},
		{
			name:  "negative_seed",
			yaml:  "run:\n  seed: -1\n",
			field: "run.seed",
		},
		{
			name:  "negative_max_retries",
			yaml:  "tracking:\n  max_retries: -1\n",
			field: "tracking.max_retries",
		},
		{
			name:  "malformed_base_url",
			yaml:  "tracking:\n  base_url: not-a-url\n",
			field: "tracking.base_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			if tt.message != "" {
				assert.Contains(t, cfgErr.Message, tt.message)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  project: nlp\n"), 0o640))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nlp", cfg.Run.Project)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "missing", cfgErr.Category)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "runkit", cfg.App.Name)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run:\n  seed: 1\n"), 0o640))

	t.Setenv("RUNKIT_RUN__SEED", "99")
	t.Setenv("RUNKIT_TRACKING__API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Run.Seed)
	assert.Equal(t, "from-env", cfg.Tracking.APIKey)
}

func TestAccessors(t *testing.T) {
	cfg, err := LoadBytes([]byte(`
experiment:
  tag: baseline
  repeats: 3
  warmup: 1m30s
  dropout: 0.5
  shuffle: true
`))
	require.NoError(t, err)

	assert.Equal(t, "baseline", cfg.GetString("experiment.tag"))
	assert.Equal(t, 3, cfg.GetInt("experiment.repeats"))
	assert.Equal(t, 90*time.Second, cfg.GetDuration("experiment.warmup"))
	assert.InDelta(t, 0.5, cfg.GetFloat64("experiment.dropout"), 1e-9)
	assert.True(t, cfg.GetBool("experiment.shuffle"))

	// defaults for missing keys
	assert.Equal(t, "fallback", cfg.GetString("experiment.missing", "fallback"))
	assert.Equal(t, 7, cfg.GetInt("experiment.missing", 7))
	assert.False(t, cfg.GetBool("experiment.missing"))
}

func TestGetRequiredString(t *testing.T) {
	cfg, err := LoadBytes([]byte("tracking:\n  api_key: \"  \"\n"))
	require.NoError(t, err)

	got, err := cfg.GetRequiredString("app.name")
	require.NoError(t, err)
	assert.Equal(t, "runkit", got)

	_, err = cfg.GetRequiredString("tracking.api_key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = cfg.GetRequiredString("no.such.key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestNilConfigAccessors(t *testing.T) {
	var cfg *Config
	assert.Equal(t, "", cfg.GetString("any"))
	assert.Equal(t, 5, cfg.GetInt("any", 5))
}

func TestIsNotConfigured(t *testing.T) {
	assert.False(t, IsNotConfigured(nil))
	assert.True(t, IsNotConfigured(ErrNotConfigured))
	assert.True(t, IsNotConfigured(NewNotConfiguredError("tracking", "RUNKIT_TRACKING__BASE_URL", "tracking.base_url")))
	assert.False(t, IsNotConfigured(NewMissingFieldError("app.name", "RUNKIT_APP__NAME", "app.name")))
}

func TestGridAxesCopies(t *testing.T) {
	cfg, err := LoadBytes([]byte("grid:\n  lr: [0.1, 0.2]\n"))
	require.NoError(t, err)

	axes := cfg.GridAxes()
	require.Len(t, axes["lr"], 2)
	axes["lr"][0] = "mutated"
	assert.NotEqual(t, "mutated", cfg.Grid["lr"][0])
}
