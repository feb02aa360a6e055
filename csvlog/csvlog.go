// Package csvlog provides a durable, append-only CSV logger for experiment
// metrics. A logger accumulates one logical table per file: the column set is
// fixed by the first row logged (or adopted from an existing file's header)
// and every later row is projected onto it. Appends are flushed and synced
// before Log returns, so a crash never loses an acknowledged row.
//
// The logger assumes a single writer. Concurrent Log calls against the same
// file must be serialized by the caller; concurrent reads are safe with each
// other.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// DurabilityMode controls how appends reach stable storage.
type DurabilityMode int

const (
	// SyncEveryRow flushes and fsyncs after every appended row. Default.
	SyncEveryRow DurabilityMode = iota
	// Buffered skips the per-row fsync, trading durability for throughput.
	// Rows still reach the OS before Log returns.
	Buffered
)

type options struct {
	durability DurabilityMode
}

// Option configures a Logger.
type Option func(*options)

// WithDurability sets the append durability mode.
func WithDurability(mode DurabilityMode) Option {
	return func(o *options) {
		o.durability = mode
	}
}

// Logger appends rows to a CSV file. The zero value is not usable; construct
// with New.
type Logger struct {
	path          string
	durability    DurabilityMode
	schema        []string
	headerWritten bool
}

// New creates a logger writing to <dir>/<name>.csv. The directory is created
// if absent. If the file already exists its header is reused on append (call
// LoadFromDisk to also adopt the schema into this instance).
func New(dir, name string, opts ...Option) (*Logger, error) {
	o := options{durability: SyncEveryRow}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("csvlog: create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name+".csv")
	_, err := os.Stat(path)

	return &Logger{
		path:          path,
		durability:    o.durability,
		headerWritten: err == nil,
	}, nil
}

// Path returns the underlying file path.
func (l *Logger) Path() string {
	return l.path
}

// Log appends one row. The first call fixes the schema to the row's key
// order. On every call the row is projected onto the schema: keys missing
// from the row become empty fields, keys outside the schema are silently
// dropped. The header line is written before the first data line when the
// file is new. The row is durable before Log returns unless the logger was
// built with Buffered durability.
func (l *Logger) Log(row Row) error {
	if len(row) == 0 {
		return fmt.Errorf("%w: empty row", ErrInvalidRow)
	}
	keys, dup := row.keys()
	if dup != "" {
		return fmt.Errorf("%w: duplicate key %q", ErrInvalidRow, dup)
	}

	if l.schema == nil {
		l.schema = keys
	}

	values := row.lookup()
	record := make([]string, len(l.schema))
	for i, k := range l.schema {
		if v, ok := values[k]; ok {
			record[i] = render(v)
		}
	}

	return l.append(record)
}

// append writes one record, emitting the header first when needed.
func (l *Logger) append(record []string) error {
	_, statErr := os.Stat(l.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("csvlog: open %s: %w", l.path, err)
	}

	w := csv.NewWriter(f)
	if newFile || !l.headerWritten {
		if err := w.Write(l.schema); err != nil {
			_ = f.Close()
			return fmt.Errorf("csvlog: write header: %w", err)
		}
		l.headerWritten = true
	}
	if err := w.Write(record); err != nil {
		_ = f.Close()
		return fmt.Errorf("csvlog: write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csvlog: flush: %w", err)
	}

	if l.durability == SyncEveryRow {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("csvlog: sync %s: %w", l.path, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("csvlog: close %s: %w", l.path, err)
	}
	return nil
}

// LoadFromDisk re-synchronizes the instance with an existing file: when the
// file exists and is non-empty, the schema is adopted from its header and
// marked as written, so later Log calls append instead of re-emitting a
// header. Used when resuming a logger for a file written by a prior process.
func (l *Logger) LoadFromDisk() (*Table, error) {
	t, err := l.Table()
	if err != nil {
		return nil, err
	}
	if len(t.Columns) > 0 {
		l.schema = append([]string(nil), t.Columns...)
		l.headerWritten = true
	}
	return t, nil
}

// Remove deletes the underlying file and resets the logger to its
// pre-first-log state. Removing a missing file is a no-op.
func (l *Logger) Remove() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("csvlog: remove %s: %w", l.path, err)
	}
	l.schema = nil
	l.headerWritten = false
	return nil
}
