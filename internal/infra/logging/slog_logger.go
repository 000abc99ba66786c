package logging

import (
	"context"
	"io"
	"log/slog"

	slogenv "github.com/cbrewster/slog-env"
)

// SlogLogger adapts a *slog.Logger to Logger. Field maps become slog attributes.
type SlogLogger struct {
	L *slog.Logger
}

// New builds a JSON logger whose level is controlled by the GO_LOG env var.
func New(w io.Writer, env string) *SlogLogger {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	h := slogenv.NewHandler(slog.NewJSONHandler(w, nil), slogenv.WithDefaultLevel(level))
	return &SlogLogger{L: slog.New(h).With("service", "chatterpay-business")}
}

func (l *SlogLogger) log(level slog.Level, msg string, fields map[string]any) {
	attrs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		attrs = append(attrs, k, v)
	}
	l.L.Log(context.Background(), level, msg, attrs...)
}

func (l *SlogLogger) Info(msg string, fields map[string]any) {
	l.log(slog.LevelInfo, msg, fields)
}

func (l *SlogLogger) Error(msg string, fields map[string]any) {
	l.log(slog.LevelError, msg, fields)
}
