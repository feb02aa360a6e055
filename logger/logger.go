package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ZeroLogger wraps zerolog.Logger to implement the Logger interface.
type ZeroLogger struct {
	zlog   *zerolog.Logger
	filter *SensitiveDataFilter
}

// Ensure ZeroLogger implements the interface
var _ Logger = (*ZeroLogger)(nil)

// New creates a ZeroLogger writing to stdout at the given level. If pretty is
// true, output is formatted for human readability instead of JSON.
func New(level string, pretty bool) *ZeroLogger {
	return NewWithOutput(os.Stdout, level, pretty)
}

// NewWithOutput creates a ZeroLogger writing to the given writer. Unknown
// level strings fall back to info.
func NewWithOutput(w io.Writer, level string, pretty bool) *ZeroLogger {
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	l := zerolog.New(w).With().Timestamp().Logger()

	zLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zLevel = zerolog.InfoLevel
	}
	l = l.Level(zLevel)

	return &ZeroLogger{zlog: &l, filter: NewSensitiveDataFilter(nil)}
}

// NewWithFilter creates a ZeroLogger with a custom sensitive-field filter
// configuration.
func NewWithFilter(level string, pretty bool, filterConfig *FilterConfig) *ZeroLogger {
	l := NewWithOutput(os.Stdout, level, pretty)
	l.filter = NewSensitiveDataFilter(filterConfig)
	return l
}

// WithFields returns a logger with additional fields attached to all log entries.
func (l *ZeroLogger) WithFields(fields map[string]any) Logger {
	if l.filter != nil {
		fields = l.filter.FilterFields(fields)
	}
	log := l.zlog.With().Fields(fields).Logger()
	return &ZeroLogger{zlog: &log, filter: l.filter}
}

// Nop returns a logger that discards everything. Useful as a default for
// components whose callers did not supply a logger.
func Nop() Logger {
	l := zerolog.Nop()
	return &ZeroLogger{zlog: &l}
}
