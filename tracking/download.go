package tracking

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/runforge/runkit/artifact"
	"github.com/runforge/runkit/csvlog"
	"github.com/runforge/runkit/fileio"
	"github.com/runforge/runkit/logger"
)

// DownloadOptions selects the runs to download and where they land.
type DownloadOptions struct {
	Entity  string
	Project string
	// BaseFolder is the root for run directories. Default "./results".
	BaseFolder string
	// Filter keeps only runs whose config matches every listed pair.
	Filter map[string]any
	// OutputFolder derives a run's directory from its cleaned config. When
	// nil, runs land in <BaseFolder>/<run name>.
	OutputFolder func(cfg map[string]any, base string) string
	// Concurrency bounds parallel run downloads. Default 4.
	Concurrency int
	// Mirror, when set, also uploads each run's files to the store under
	// <run name>/.
	Mirror artifact.Store
}

// Downloader bulk-downloads runs into the toolkit's on-disk layout: one
// directory per run holding config.yaml and history.csv.
type Downloader struct {
	svc *Service
	log logger.Logger
}

// NewDownloader creates a Downloader. A nil log discards progress logging.
func NewDownloader(svc *Service, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.Nop()
	}
	return &Downloader{svc: svc, log: log}
}

// DownloadRuns fetches all matching runs of a project and writes each to its
// own directory. The returned folder paths follow the server's run order.
// A failure on any run aborts the remaining downloads.
func (d *Downloader) DownloadRuns(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.Entity == "" || opts.Project == "" {
		return nil, fmt.Errorf("tracking: entity and project are required")
	}
	if opts.BaseFolder == "" {
		opts.BaseFolder = "./results"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	all, err := d.svc.Runs(ctx, opts.Entity, opts.Project)
	if err != nil {
		return nil, err
	}

	type job struct {
		run    Run
		cfg    map[string]any
		folder string
	}
	var jobs []job
	for _, run := range all {
		cfg := stripInternalKeys(run.Config)
		if opts.Filter != nil && !FilterConfig(opts.Filter, cfg) {
			continue
		}
		folder := filepath.Join(opts.BaseFolder, run.Name)
		if opts.OutputFolder != nil {
			folder = opts.OutputFolder(cfg, opts.BaseFolder)
		}
		jobs = append(jobs, job{run: run, cfg: cfg, folder: folder})
	}

	d.log.Info().Str("project", opts.Project).Int("matched", len(jobs)).
		Int("total", len(all)).Msg("downloading runs")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			return d.downloadRun(gctx, opts, j.run, j.cfg, j.folder)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	folders := make([]string, 0, len(jobs))
	for _, j := range jobs {
		folders = append(folders, j.folder)
	}
	return folders, nil
}

func (d *Downloader) downloadRun(ctx context.Context, opts DownloadOptions, run Run, cfg map[string]any, folder string) error {
	if err := fileio.CreateFolder(folder); err != nil {
		return err
	}

	cfgPath := filepath.Join(folder, "config.yaml")
	if err := fileio.SaveYAML(cfgPath, cfg); err != nil {
		return err
	}

	rows, err := d.svc.History(ctx, opts.Entity, opts.Project, run.ID)
	if err != nil {
		return err
	}

	histPath, err := writeHistory(folder, rows)
	if err != nil {
		return err
	}

	d.log.Info().Str("run", run.Name).Str("folder", folder).
		Int("rows", len(rows)).Msg("run downloaded")

	if opts.Mirror != nil {
		for _, path := range []string{cfgPath, histPath} {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("tracking: read %s for mirroring: %w", path, err)
			}
			name := run.Name + "/" + filepath.Base(path)
			if err := opts.Mirror.Put(ctx, name, data); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeHistory materializes metric rows as history.csv. The column order is
// the first row's keys, sorted; later rows are projected onto it.
func writeHistory(folder string, rows []map[string]any) (string, error) {
	lg, err := csvlog.New(folder, "history", csvlog.WithDurability(csvlog.Buffered))
	if err != nil {
		return "", err
	}
	if err := lg.Remove(); err != nil {
		return "", err
	}

	for i, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(csvlog.Row, 0, len(keys))
		for _, k := range keys {
			out = append(out, csvlog.F(k, row[k]))
		}
		if err := lg.Log(out); err != nil {
			return "", fmt.Errorf("tracking: write history row %d: %w", i, err)
		}
	}

	if len(rows) == 0 {
		// Still leave an empty file so the run directory is complete.
		if err := os.WriteFile(lg.Path(), nil, 0o640); err != nil {
			return "", fmt.Errorf("tracking: write empty history: %w", err)
		}
	}
	return lg.Path(), nil
}
