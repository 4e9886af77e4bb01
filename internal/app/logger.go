package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. When
// logFile is set, records are also appended to it as JSON; the returned
// closer releases the file.
func newLogger(levelStr, formatStr, logFile string, outW io.Writer) (*slog.Logger, io.Closer, error) {
	level := parseLevel(levelStr)

	var console slog.Handler
	if formatStr == "json" {
		console = slog.NewJSONHandler(outW, &slog.HandlerOptions{Level: level})
	} else {
		console = tint.NewHandler(outW, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	}

	if logFile == "" {
		return slog.New(console), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler := slogmulti.Fanout(
		console,
		slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}),
	)
	return slog.New(handler), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
