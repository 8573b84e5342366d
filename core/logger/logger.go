// Package logger is the process-wide structured logger. Every line carries a
// component and an event name; request metadata is picked up from the
// context (see WithRID and WithUpdateMeta).
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/habitbot/core/buildinfo"
	coreconfig "github.com/m3rciful/habitbot/core/config"
)

var (
	mu      sync.Mutex
	base    *slog.Logger
	writer  *asyncWriter
	closers []io.Closer

	level   slog.LevelVar
	sampler = newRatioSampler(1, 50)
)

// Init installs the structured handler as the slog default. Calling it again
// replaces the previous sinks.
func Init(cfg coreconfig.LoggingConfig) error {
	outputs, files, err := openOutputs(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	prevWriter, prevClosers := writer, closers
	level.Set(parseLevel(cfg))
	sampler.Set(parseRatio(cfg.DebugSample))
	writer = newAsyncWriter(outputs)
	closers = files
	base = slog.New(newStructuredHandler(handlerConfig{
		level:    &level,
		writer:   writer,
		format:   parseFormat(cfg),
		keyOrder: parseKeyOrder(cfg.KeysOrder),
	}))
	slog.SetDefault(base)
	mu.Unlock()

	closeSinks(prevWriter, prevClosers)

	Info(context.Background(), "app", "startup",
		slog.String("status", "ok"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("profile", profile(cfg)),
	)
	return nil
}

// Shutdown flushes buffered output and closes log files.
func Shutdown() error {
	mu.Lock()
	w, c := writer, closers
	writer, closers, base = nil, nil, nil
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	mu.Unlock()
	return closeSinks(w, c)
}

func closeSinks(w *asyncWriter, files []io.Closer) error {
	var errs []error
	if w != nil {
		errs = append(errs, w.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// Component returns a logger tagged with the component name. Before Init it
// falls back to the slog default.
func Component(name string) *slog.Logger {
	mu.Lock()
	l := base
	mu.Unlock()
	if l == nil {
		l = slog.Default()
	}
	if name = strings.TrimSpace(name); name != "" {
		l = l.With("component", name)
	}
	return l
}

// Event writes one line for component at the given level.
func Event(ctx context.Context, component string, lvl slog.Level, event string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	l := Component(component)
	if !l.Enabled(ctx, lvl) {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	l.LogAttrs(ctx, lvl, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug thins out high-volume debug events such as raw update dumps.
func ShouldSampleDebug() bool {
	return sampler.Allow()
}

func openOutputs(cfg coreconfig.LoggingConfig) ([]io.Writer, []io.Closer, error) {
	outputs := []io.Writer{os.Stdout}
	dir, file := strings.TrimSpace(cfg.Dir), strings.TrimSpace(cfg.BotFile)
	if dir == "" || file == "" {
		return outputs, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, file)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open %s: %w", path, err)
	}
	return append(outputs, f), []io.Closer{f}, nil
}

func profile(cfg coreconfig.LoggingConfig) string {
	if p := strings.ToLower(strings.TrimSpace(cfg.Profile)); p != "" {
		return p
	}
	return "prod"
}

func parseFormat(cfg coreconfig.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if p := profile(cfg); p == "debug" || p == "dev" {
		return formatKV
	}
	return formatJSON
}

func parseLevel(cfg coreconfig.LoggingConfig) slog.Level {
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "":
		if profile(cfg) == "debug" {
			return slog.LevelDebug
		}
	}
	return slog.LevelInfo
}

func parseKeyOrder(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return append([]string(nil), defaultKeyOrder...)
	}
	var order []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}
