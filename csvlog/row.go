package csvlog

import (
	"fmt"
	"strconv"
	"strings"
)

// Field is one named value in a row.
type Field struct {
	Key   string
	Value any
}

// Row is an ordered list of named values. Order matters only for the first
// row ever logged: it fixes the column order of the file.
type Row []Field

// F is a shorthand Field constructor for building rows inline:
//
//	lg.Log(csvlog.Row{csvlog.F("loss", 0.5), csvlog.F("step", 1)})
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Sequencer is implemented by values that should be stored as a bracketed
// sequence literal. The rendering is a one-way textual encoding: reading the
// column back yields the literal string (e.g. "[1, 2, 3]"), not a sequence.
type Sequencer interface {
	Sequence() []any
}

// render converts a value to its single-field textual form.
func render(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case Sequencer:
		return renderSequence(val.Sequence())
	case []any:
		return renderSequence(val)
	case []int:
		seq := make([]any, len(val))
		for i, e := range val {
			seq[i] = e
		}
		return renderSequence(seq)
	case []int64:
		seq := make([]any, len(val))
		for i, e := range val {
			seq[i] = e
		}
		return renderSequence(seq)
	case []float64:
		seq := make([]any, len(val))
		for i, e := range val {
			seq[i] = e
		}
		return renderSequence(seq)
	case []float32:
		seq := make([]any, len(val))
		for i, e := range val {
			seq[i] = e
		}
		return renderSequence(seq)
	case []string:
		seq := make([]any, len(val))
		for i, e := range val {
			seq[i] = e
		}
		return renderSequence(seq)
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// renderSequence produces the bracketed literal form, e.g. "[1, 2, 3]".
func renderSequence(seq []any) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range seq {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(render(e))
	}
	b.WriteByte(']')
	return b.String()
}

// keys returns the row's key order. dup reports a duplicated key, if any.
func (r Row) keys() (keys []string, dup string) {
	seen := make(map[string]struct{}, len(r))
	keys = make([]string, 0, len(r))
	for _, f := range r {
		if _, ok := seen[f.Key]; ok {
			return nil, f.Key
		}
		seen[f.Key] = struct{}{}
		keys = append(keys, f.Key)
	}
	return keys, ""
}

// lookup builds a key→value index for schema projection.
func (r Row) lookup() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}
