// Package logger is the process-wide structured logging facade for matchd.
//
// It wraps log/slog behind a small Field-based API so call sites stay
// decoupled from the handler choice. The level is adjustable at runtime,
// which lets the service honor the log_level configuration key after the
// logger is already live.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Frames to ascend from callSite: log, the exported method, then the
// actual logging call site.
const callerDepth = 3

// Logger is the structured logging contract used across matchd. Every
// method takes a context so a handler can pull request-scoped data from it.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field is one structured key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

// Typed field constructors.
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

// stdLogger adapts *slog.Logger to the Logger contract and stamps every
// line with its call site.
type stdLogger struct {
	slog *slog.Logger
}

func (l *stdLogger) Named(name string) Logger {
	return &stdLogger{slog: l.slog.WithGroup(name)}
}

func (l *stdLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *stdLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *stdLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *stdLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

// Fatal logs at error level and exits the process. Reserved for startup
// failures; workers and handlers return errors instead.
func (l *stdLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *stdLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	attrs := make([]slog.Attr, 0, len(fields)+1)
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("caller", callSite()))
	l.slog.LogAttrs(ctx, level, msg, attrs...)
}

// callSite reports the logging call site as path/file.go:line, relative to
// the working directory when that can be resolved.
func callSite() string {
	_, file, line, ok := runtime.Caller(callerDepth)
	if !ok {
		return "unknown:0"
	}
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, file); err == nil {
			return fmt.Sprintf("%s:%d", rel, line)
		}
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

var (
	global   Logger
	levelVar slog.LevelVar
)

// Init installs the global logger: a text handler on stdout at info level.
// The level can be raised or lowered afterwards via SetLevel or
// SetLevelString, typically from the log_level configuration key.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &levelVar})
	global = &stdLogger{slog: slog.New(handler)}
	return nil
}

// Get returns the global logger. It panics when Init has not run, which
// surfaces wiring mistakes at startup instead of silently dropping lines.
func Get() Logger {
	if global == nil {
		panic("logger: Init was not called")
	}
	return global
}

// Named returns a child of the global logger grouped under name.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered entries. The slog text handler writes through, so
// this is a no-op kept for the shutdown path's symmetry.
func Sync() error {
	return nil
}

// SetLevel adjusts the global handler level at runtime.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString maps a configuration string onto SetLevel. Accepted
// values are debug, info, warn, warning, and error; the empty string keeps
// info.
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
