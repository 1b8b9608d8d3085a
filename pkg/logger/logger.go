package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger writes JSON lines tagged with the service name and host.
type Logger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

func New(service, level string) *Logger {
	return NewWithWriter(service, level, os.Stdout)
}

func NewWithWriter(service, level string, w io.Writer) *Logger {
	hostname, _ := os.Hostname()

	handler := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))

	return &Logger{
		service:  service,
		hostname: hostname,
		handler:  handler,
	}
}

// Discard is used by tests that don't care about log output.
func Discard() *Logger {
	return NewWithWriter("test", "error", io.Discard)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) Debug(action, message string, fields ...any) {
	l.log(slog.LevelDebug, action, message, nil, fields)
}

func (l *Logger) Info(action, message string, fields ...any) {
	l.log(slog.LevelInfo, action, message, nil, fields)
}

func (l *Logger) Warn(action, message string, fields ...any) {
	l.log(slog.LevelWarn, action, message, nil, fields)
}

func (l *Logger) Error(action, message string, err error, fields ...any) {
	l.log(slog.LevelError, action, message, err, fields)
}

func (l *Logger) log(level slog.Level, action, message string, err error, fields []any) {
	attrs := []slog.Attr{
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("action", action),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, fields[i+1]))
	}
	l.handler.LogAttrs(context.Background(), level, message, attrs...)
}
