package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Table is the full in-memory materialization of a log file: ordered columns
// and rows in file order. Values are the raw field strings; numeric parsing
// is left to the caller.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no columns and no rows.
func (t *Table) IsEmpty() bool {
	return len(t.Columns) == 0 && len(t.Rows) == 0
}

// Get returns the named column's values in row order. A missing column
// yields an empty slice.
func (t *Table) Get(column string) []string {
	idx := -1
	for i, c := range t.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return []string{}
	}
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, row[idx])
	}
	return out
}

// Table reads the whole file from disk. A missing file yields an empty
// table; a file that cannot be parsed as delimited text with a consistent
// column count yields ErrCorruptLog.
func (l *Logger) Table() (*Table, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("csvlog: open %s: %w", l.path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLog, l.path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	return &Table{
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

// Get loads the full table and returns the named column's values in row
// order. A missing column or missing file yields an empty slice.
func (l *Logger) Get(column string) ([]string, error) {
	t, err := l.Table()
	if err != nil {
		return nil, err
	}
	return t.Get(column), nil
}
