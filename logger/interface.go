// Package logger defines the structured logging contract used across runkit.
// Components that emit logs accept a Logger rather than constructing one, so
// training scripts can route toolkit output through their own sink.
package logger

import "time"

// Logger creates log events at the usual severity levels and derives
// contextual child loggers.
type Logger interface {
	Info() LogEvent
	Error() LogEvent
	Debug() LogEvent
	Warn() LogEvent
	WithFields(fields map[string]any) Logger
}

// LogEvent is a structured log event under construction. Field methods return
// the event for chaining; Msg/Msgf terminate it.
type LogEvent interface {
	Msg(msg string)
	Msgf(format string, args ...any)
	Err(err error) LogEvent
	Str(key, value string) LogEvent
	Int(key string, value int) LogEvent
	Int64(key string, value int64) LogEvent
	Float64(key string, value float64) LogEvent
	Dur(key string, d time.Duration) LogEvent
	Interface(key string, i any) LogEvent
}
