package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

var log = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Init installs the process logger. Development gets colored tint output at
// debug level; every other environment gets JSON at info level.
func Init(env string) {
	level := new(slog.LevelVar)

	var handler slog.Handler
	switch strings.ToLower(env) {
	case "development", "dev", "local":
		level.Set(slog.LevelDebug)
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
	default:
		level.Set(slog.LevelInfo)
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}

	log = slog.New(handler)
	slog.SetDefault(log)
}

// Set replaces the logger, tests use it to silence or capture output.
func Set(l *slog.Logger) {
	log = l
}

func L() *slog.Logger {
	return log
}

func Debug(msg string, args ...any) {
	logAt(slog.LevelDebug, msg, args...)
}

func Info(msg string, args ...any) {
	logAt(slog.LevelInfo, msg, args...)
}

func Warn(msg string, args ...any) {
	logAt(slog.LevelWarn, msg, args...)
}

func Error(msg string, args ...any) {
	logAt(slog.LevelError, msg, args...)
}

func Fatal(msg string, args ...any) {
	logAt(slog.LevelError, msg, args...)
	os.Exit(1)
}

// logAt builds the record itself so the source points at the caller of
// the package helper, not at this file.
func logAt(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !log.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // runtime.Callers, logAt, helper
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = log.Handler().Handle(ctx, r)
}
