package logging

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

type ctxLoggerKey struct{}
type ctxAttrsKey struct{}

const (
	keyComponent   = "component"
	keyRunID       = "run_id"
	keyParentRunID = "parent_run_id"
)

var fallback atomic.Pointer[slog.Logger]

func init() {
	fallback.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

// SetDefault replaces the logger used for contexts that carry none.
func SetDefault(logger *slog.Logger) {
	if logger != nil {
		fallback.Store(logger)
	}
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(attrs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, ctxAttrsKey{}, mergeAttrs(Attrs(ctx), attrs))
}

// WithRun tags ctx with a pipeline run. A run opened inside another run keeps
// the outer id as parent_run_id.
func WithRun(ctx context.Context, component string, runID string) context.Context {
	attrs := make([]slog.Attr, 0, 3)
	if component != "" {
		attrs = append(attrs, slog.String(keyComponent, component))
	}
	if parent, ok := attrValue(ctx, keyRunID); ok && parent != runID {
		attrs = append(attrs, slog.String(keyParentRunID, parent))
	}
	if runID != "" {
		attrs = append(attrs, slog.String(keyRunID, runID))
	}
	return WithAttrs(ctx, attrs...)
}

func Logger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return fallback.Load()
}

// Attrs returns a copy of the attributes carried by ctx.
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(ctxAttrsKey{}).([]slog.Attr)
	if len(attrs) == 0 {
		return nil
	}
	return append([]slog.Attr(nil), attrs...)
}

func attrValue(ctx context.Context, key string) (string, bool) {
	for _, attr := range Attrs(ctx) {
		if attr.Key == key {
			return attr.Value.String(), true
		}
	}
	return "", false
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelDebug, msg, attrs...)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelInfo, msg, attrs...)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelWarn, msg, attrs...)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelError, msg, attrs...)
}

func log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := Logger(ctx)
	if !logger.Enabled(ctx, level) {
		return
	}
	logger.LogAttrs(ctx, level, msg, mergeAttrs(Attrs(ctx), attrs)...)
}

// mergeAttrs appends extra to base; a keyed attr in extra replaces the base
// attr with the same key in place.
func mergeAttrs(base []slog.Attr, extra []slog.Attr) []slog.Attr {
	merged := make([]slog.Attr, 0, len(base)+len(extra))
	merged = append(merged, base...)
	if len(extra) == 0 {
		return merged
	}

	position := make(map[string]int, len(merged))
	for i, attr := range merged {
		if attr.Key != "" {
			position[attr.Key] = i
		}
	}
	for _, attr := range extra {
		if i, ok := position[attr.Key]; ok && attr.Key != "" {
			merged[i] = attr
			continue
		}
		merged = append(merged, attr)
		if attr.Key != "" {
			position[attr.Key] = len(merged) - 1
		}
	}
	return merged
}
