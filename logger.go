package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// nopHandler discards every record. The terminal belongs to the UI, so
// logging stays silent unless a log file is configured.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}

// setLogger installs l; nil restores the silent default.
func setLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// openLogFile routes both slog and the standard log package to path. The
// returned closer must be called on exit.
func openLogFile(path string, level slog.Level) (io.Closer, error) {
	f, err := tea.LogToFile(path, "cutout")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	setLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f, nil
}

// logLevelFromEnv reads CUTOUT_LOG_LEVEL (debug, info, warn, error).
func logLevelFromEnv() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv("CUTOUT_LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return level
}
