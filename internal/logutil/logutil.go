// Package logutil builds the slog loggers used by the command line tools.
package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

// LevelTrace is below debug. Parse traces are logged at this level.
const LevelTrace slog.Level = -8

// ParseLevel maps "trace", "debug", "info", "warn" and "error" to a level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger returns a text logger writing to w. Source locations are only
// added at debug and below.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if attr.Value.Any().(slog.Level) == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}

type key string

// Trace logs msg at LevelTrace on logger.
func Trace(logger *slog.Logger, msg string, args ...any) {
	TraceContext(context.WithValue(context.TODO(), key("skip"), 1), logger, msg, args...)
}

// TraceContext is Trace with a context.
func TraceContext(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	skip, _ := ctx.Value(key("skip")).(int)
	pc, _, _, _ := runtime.Caller(1 + skip)
	record := slog.NewRecord(time.Now(), LevelTrace, msg, pc)
	record.Add(args...)
	logger.Handler().Handle(ctx, record)
}
