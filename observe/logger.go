package observe

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// zerologLogger implements Logger on top of zerolog.
type zerologLogger struct {
	log zerolog.Logger
}

// NewLogger creates a structured JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a structured JSON logger with a custom writer.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &zerologLogger{log: zl}
}

// parseLevel maps a level name to a zerolog level. Unknown names fall back
// to info.
func parseLevel(s string) zerolog.Level {
	switch s {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologLogger) Info(_ context.Context, msg string, fields ...Field) {
	emit(l.log.Info(), msg, fields)
}

func (l *zerologLogger) Warn(_ context.Context, msg string, fields ...Field) {
	emit(l.log.Warn(), msg, fields)
}

func (l *zerologLogger) Error(_ context.Context, msg string, fields ...Field) {
	emit(l.log.Error(), msg, fields)
}

func (l *zerologLogger) Debug(_ context.Context, msg string, fields ...Field) {
	emit(l.log.Debug(), msg, fields)
}

func (l *zerologLogger) With(fields ...Field) Logger {
	ctx := l.log.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &zerologLogger{log: ctx.Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

// noopLogger discards everything.
type noopLogger struct{}

// NoopLogger returns a logger that discards all entries.
func NoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Info(context.Context, string, ...Field)  {}
func (noopLogger) Warn(context.Context, string, ...Field)  {}
func (noopLogger) Error(context.Context, string, ...Field) {}
func (noopLogger) Debug(context.Context, string, ...Field) {}
func (n noopLogger) With(...Field) Logger                  { return n }

var _ Logger = (*zerologLogger)(nil)
