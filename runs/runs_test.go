package runs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runforge/runkit/csvlog"
	"github.com/runforge/runkit/fileio"
)

func writeRun(t *testing.T, base, name string, cfg map[string]any, rows []csvlog.Row) {
	t.Helper()
	dir := filepath.Join(base, name)
	require.NoError(t, fileio.CreateFolder(dir))
	require.NoError(t, fileio.SaveYAML(filepath.Join(dir, "config.yaml"), cfg))

	lg, err := csvlog.New(dir, "history")
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, lg.Log(row))
	}
}

func TestScanLoadsRuns(t *testing.T) {
	base := t.TempDir()
	writeRun(t, base, "run-b", map[string]any{"env_id": "Acrobot-v1"}, []csvlog.Row{
		{csvlog.F("loss", 0.9), csvlog.F("step", 1)},
	})
	writeRun(t, base, "run-a", map[string]any{"env_id": "CartPole-v1"}, []csvlog.Row{
		{csvlog.F("loss", 0.5), csvlog.F("step", 1)},
		{csvlog.F("loss", 0.3), csvlog.F("step", 2)},
	})

	got, err := Scan(base)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Sorted by name.
	assert.Equal(t, "run-a", got[0].Name)
	assert.Equal(t, "run-b", got[1].Name)

	assert.Equal(t, "CartPole-v1", got[0].Config["env_id"])
	assert.Equal(t, 2, got[0].History.Len())
	assert.Equal(t, []string{"0.5", "0.3"}, got[0].History.Get("loss"))
}

func TestScanSkipsIncompleteDirs(t *testing.T) {
	base := t.TempDir()
	writeRun(t, base, "complete", map[string]any{"a": 1}, []csvlog.Row{
		{csvlog.F("loss", 0.1)},
	})

	// Directory with only a config, and one with neither file.
	require.NoError(t, fileio.CreateFolder(filepath.Join(base, "config-only")))
	require.NoError(t, fileio.SaveYAML(filepath.Join(base, "config-only", "config.yaml"), map[string]any{}))
	require.NoError(t, fileio.CreateFolder(filepath.Join(base, "empty")))

	// Stray file at the top level.
	require.NoError(t, os.WriteFile(filepath.Join(base, "notes.txt"), []byte("x"), 0o640))

	got, err := Scan(base)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "complete", got[0].Name)
}

func TestScanMissingBaseFolder(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScanCorruptHistory(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "bad")
	require.NoError(t, fileio.CreateFolder(dir))
	require.NoError(t, fileio.SaveYAML(filepath.Join(dir, "config.yaml"), map[string]any{}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "history.csv"), []byte("a,b\n1,2,3\n"), 0o640))

	_, err := Scan(base)
	require.ErrorIs(t, err, csvlog.ErrCorruptLog)
	assert.Contains(t, err.Error(), "bad")
}

func TestColumn(t *testing.T) {
	base := t.TempDir()
	writeRun(t, base, "a", map[string]any{}, []csvlog.Row{
		{csvlog.F("loss", 0.5)},
	})
	writeRun(t, base, "b", map[string]any{}, []csvlog.Row{
		{csvlog.F("reward", 10)},
	})

	rs, err := Scan(base)
	require.NoError(t, err)

	got := Column(rs, "loss")
	assert.Equal(t, []string{"0.5"}, got["a"])
	assert.Empty(t, got["b"])
}

func TestFilter(t *testing.T) {
	base := t.TempDir()
	writeRun(t, base, "a", map[string]any{"env_id": "CartPole-v1", "lr": 0.01}, []csvlog.Row{
		{csvlog.F("loss", 0.5)},
	})
	writeRun(t, base, "b", map[string]any{"env_id": "Acrobot-v1", "lr": 0.01}, []csvlog.Row{
		{csvlog.F("loss", 0.9)},
	})

	rs, err := Scan(base)
	require.NoError(t, err)

	got := Filter(rs, map[string]any{"env_id": "CartPole-v1"})
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)

	got = Filter(rs, map[string]any{"lr": 0.01})
	assert.Len(t, got, 2)
}
