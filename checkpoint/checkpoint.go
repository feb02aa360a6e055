// Package checkpoint saves and restores training state. A checkpoint
// carries the global step, named opaque state blobs (model and optimizer
// weights serialized by the caller's framework), a snapshot of the run
// configuration, and serialized RNG state, so a resumed run continues the
// same trajectory.
//
// Writes are atomic: state is written to a temporary file, synced, and
// renamed over the target, so a crash mid-save never corrupts an existing
// checkpoint.
package checkpoint

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/runforge/runkit/logger"
)

const (
	ext        = ".ckpt"
	latestName = "latest_checkpoint" + ext
	bestName   = "best_checkpoint" + ext
	stepPrefix = "checkpoint_step_"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func init() {
	// Config snapshots carry plain decoded-JSON/YAML value types.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// State is one full training snapshot.
type State struct {
	Step      int64
	Payload   map[string][]byte
	Config    map[string]any
	SeedState []byte
	SavedAt   time.Time
}

// Manager reads and writes checkpoints under a single directory.
type Manager struct {
	dir      string
	compress bool
	log      logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithCompression toggles zstd compression of checkpoint files. Enabled by
// default; Load detects either form, so the setting can change between runs.
func WithCompression(enabled bool) Option {
	return func(m *Manager) {
		m.compress = enabled
	}
}

// WithLogger routes save/load progress through the given logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager creates a checkpoint manager rooted at dir, creating it if
// absent.
func NewManager(dir string, opts ...Option) (*Manager, error) {
	m := &Manager{
		dir:      dir,
		compress: true,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("checkpoint: create directory %s: %w", dir, err)
	}
	return m, nil
}

// SaveOptions controls checkpoint naming.
type SaveOptions struct {
	// Tag is an optional suffix for step-named checkpoints.
	Tag string
	// Best additionally writes the state as best_checkpoint.
	Best bool
	// Overwrite writes to the single latest_checkpoint file instead of a
	// step-named one.
	Overwrite bool
}

// Save writes the state and returns the path of the primary checkpoint file.
func (m *Manager) Save(state *State, opts SaveOptions) (string, error) {
	if state == nil {
		return "", fmt.Errorf("checkpoint: nil state")
	}
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now().UTC()
	}

	data, err := m.encode(state)
	if err != nil {
		return "", err
	}

	name := latestName
	if !opts.Overwrite {
		name = stepPrefix + strconv.FormatInt(state.Step, 10)
		if opts.Tag != "" {
			name += "_" + opts.Tag
		}
		name += ext
	}

	path := filepath.Join(m.dir, name)
	if err := m.writeAtomic(path, data); err != nil {
		return "", err
	}
	m.log.Info().Int64("step", state.Step).Str("path", path).Msg("checkpoint saved")

	if opts.Best {
		bestPath := filepath.Join(m.dir, bestName)
		if err := m.writeAtomic(bestPath, data); err != nil {
			return "", err
		}
		m.log.Info().Int64("step", state.Step).Str("path", bestPath).Msg("best checkpoint updated")
	}

	return path, nil
}

// Load reads a checkpoint from path. Compression is detected from the file
// content, not the manager configuration.
func (m *Manager) Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: read %s: %w", path, err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: init decompressor: %w", err)
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("checkpoint: decompress %s: %w", path, err)
		}
	}

	var state State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", path, err)
	}
	m.log.Info().Int64("step", state.Step).Str("path", path).Msg("checkpoint loaded")
	return &state, nil
}

// Latest resolves the most recent checkpoint path: the latest_checkpoint
// file when present, otherwise the highest-step step-named file. A missing
// checkpoint yields a wrapped os.ErrNotExist.
func (m *Manager) Latest() (string, error) {
	latest := filepath.Join(m.dir, latestName)
	if _, err := os.Stat(latest); err == nil {
		return latest, nil
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return "", fmt.Errorf("checkpoint: read directory %s: %w", m.dir, err)
	}

	type candidate struct {
		step int64
		name string
	}
	var candidates []candidate
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, stepPrefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		rest := strings.TrimSuffix(strings.TrimPrefix(name, stepPrefix), ext)
		// Step number is the leading segment; an optional tag follows.
		if i := strings.IndexByte(rest, '_'); i >= 0 {
			rest = rest[:i]
		}
		step, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{step: step, name: name})
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("checkpoint: no checkpoint in %s: %w", m.dir, os.ErrNotExist)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].step > candidates[j].step })
	return filepath.Join(m.dir, candidates[0].name), nil
}

func (m *Manager) encode(state *State) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("checkpoint: encode state: %w", err)
	}
	if !m.compress {
		return buf.Bytes(), nil
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: init compressor: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(buf.Bytes(), nil), nil
}

// writeAtomic writes data to a temp file, syncs it, renames it over path,
// and syncs the directory so the rename itself is durable.
func (m *Manager) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(m.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: close %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("checkpoint: rename to %s: %w", path, err)
	}
	return syncDir(m.dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("checkpoint: open directory %s: %w", dir, err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return fmt.Errorf("checkpoint: sync directory %s: %w", dir, err)
	}
	return nil
}
