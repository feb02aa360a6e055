// Package runs loads completed experiment runs from disk for analysis and
// plotting. A run directory is any first-level directory under a base folder
// holding both a config.yaml and a history.csv, the layout produced by the
// tracking downloader and by training loops using csvlog.
package runs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/runforge/runkit/csvlog"
	"github.com/runforge/runkit/fileio"
)

// Run is one loaded experiment run.
type Run struct {
	Name    string
	Config  map[string]any
	History *csvlog.Table
}

// Scan loads every run directory under baseFolder, sorted by name.
// Directories missing either file are skipped silently; directories whose
// files exist but fail to parse abort the scan with the directory named in
// the error.
func Scan(baseFolder string) ([]Run, error) {
	entries, err := os.ReadDir(baseFolder)
	if err != nil {
		return nil, fmt.Errorf("runs: read %s: %w", baseFolder, err)
	}

	var out []Run
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(baseFolder, e.Name())

		cfgPath := filepath.Join(dir, "config.yaml")
		histPath := filepath.Join(dir, "history.csv")
		if !exists(cfgPath) || !exists(histPath) {
			continue
		}

		var cfg map[string]any
		if err := fileio.LoadYAML(cfgPath, &cfg); err != nil {
			return nil, fmt.Errorf("runs: load %s: %w", e.Name(), err)
		}

		lg, err := csvlog.New(dir, "history")
		if err != nil {
			return nil, fmt.Errorf("runs: open history of %s: %w", e.Name(), err)
		}
		table, err := lg.Table()
		if err != nil {
			return nil, fmt.Errorf("runs: load %s: %w", e.Name(), err)
		}

		out = append(out, Run{Name: e.Name(), Config: cfg, History: table})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Column collects one named history column across runs, keyed by run name.
// Runs lacking the column map to an empty slice.
func Column(rs []Run, name string) map[string][]string {
	out := make(map[string][]string, len(rs))
	for _, r := range rs {
		out[r.Name] = r.History.Get(name)
	}
	return out
}

// Filter keeps runs whose config matches every key-value pair in subset.
func Filter(rs []Run, subset map[string]any) []Run {
	var out []Run
	for _, r := range rs {
		if matches(subset, r.Config) {
			out = append(out, r)
		}
	}
	return out
}

func matches(subset, full map[string]any) bool {
	for k, want := range subset {
		got, ok := full[k]
		if !ok || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
