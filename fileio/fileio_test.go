package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	in := map[string]any{"env_id": "CartPole-v1", "lr": 0.001, "seed": float64(7)}

	require.NoError(t, SaveJSON(path, in))

	var out map[string]any
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := map[string]any{"env_id": "CartPole-v1", "total_steps": 1000}

	require.NoError(t, SaveYAML(path, in))

	var out map[string]any
	require.NoError(t, LoadYAML(path, &out))
	assert.Equal(t, "CartPole-v1", out["env_id"])
	assert.Equal(t, 1000, out["total_steps"])
}

func TestLoadMissingFile(t *testing.T) {
	var out map[string]any
	assert.Error(t, LoadJSON(filepath.Join(t.TempDir(), "missing.json"), &out))
	assert.Error(t, LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), &out))
}

func TestCreateFolderIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, CreateFolder(dir))
	require.NoError(t, CreateFolder(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()

	got, err := ResolvePath(dir, true)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	_, err = ResolvePath(filepath.Join(dir, "missing"), true)
	assert.Error(t, err)

	_, err = ResolvePath(filepath.Join(dir, "missing"), false)
	assert.NoError(t, err)
}

func TestSelectKeys(t *testing.T) {
	m := map[string]any{"a": 1, "b": 2, "c": 3}

	got := SelectKeys(m, []string{"a", "c", "zzz"})
	assert.Equal(t, map[string]any{"a": 1, "c": 3}, got)
}

func TestRemoveKeys(t *testing.T) {
	m := map[string]any{"a": 1, "b": 2, "c": 3}

	got := RemoveKeys(m, []string{"b"})
	assert.Equal(t, map[string]any{"a": 1, "c": 3}, got)
}

func TestToFilename(t *testing.T) {
	m := map[string]any{"lr": 0.01, "env": "cartpole", "seed": 3}

	tests := []struct {
		name     string
		opts     *NameOptions
		expected string
	}{
		{
			name:     "sorted_all_keys",
			opts:     nil,
			expected: "env_cartpole_lr_0.01_seed_3",
		},
		{
			name:     "select_keys",
			opts:     &NameOptions{SelectKeys: []string{"env"}},
			expected: "env_cartpole",
		},
		{
			name:     "ignore_keys",
			opts:     &NameOptions{IgnoreKeys: []string{"seed"}},
			expected: "env_cartpole_lr_0.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToFilename(m, "_", tt.opts))
		})
	}
}

func TestHashStableAndOrderIndependent(t *testing.T) {
	a := map[string]any{"lr": 0.01, "seed": 3}
	b := map[string]any{"seed": 3, "lr": 0.01}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 8)

	hc, err := Hash(map[string]any{"lr": 0.02, "seed": 3})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)

	// Nested maps hash by content too, regardless of construction order.
	hn1, err := Hash(map[string]any{"optim": map[string]any{"name": "adam", "beta1": 0.9}})
	require.NoError(t, err)
	hn2, err := Hash(map[string]any{"optim": map[string]any{"beta1": 0.9, "name": "adam"}})
	require.NoError(t, err)
	assert.Equal(t, hn1, hn2)
}
