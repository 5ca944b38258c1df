package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// multiHandler dispatches log records to multiple handlers based on level.
type multiHandler struct {
	console slog.Handler // Info level and above
	file    slog.Handler // Debug level and above
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.file.Enabled(ctx, r.Level) {
		if err := h.file.Handle(ctx, r); err != nil {
			return err
		}
	}
	if h.console.Enabled(ctx, r.Level) {
		if err := h.console.Handle(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &multiHandler{
		console: h.console.WithAttrs(attrs),
		file:    h.file.WithAttrs(attrs),
	}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	return &multiHandler{
		console: h.console.WithGroup(name),
		file:    h.file.WithGroup(name),
	}
}

// initLogger initializes the logger with console and file outputs.
// Console outputs Info level and above as text.
// File outputs Debug level and above as JSON with log rotation.
// Returns a cleanup function to close the log file.
func initLogger(logDir string) (func(), error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "markersync.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		LocalTime:  true,
	}

	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	fileHandler := slog.NewJSONHandler(lj, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	slog.SetDefault(slog.New(&multiHandler{
		console: consoleHandler,
		file:    fileHandler,
	}))

	cleanup := func() {
		_ = lj.Close()
	}
	return cleanup, nil
}
