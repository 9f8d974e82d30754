package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/fastprodman/wagerpool/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupJSON sets slog's default logger to use JSON output at the given level.
func SetupJSON(level slog.Level) {
	slog.SetDefault(slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	))
}

// Setup installs a JSON default logger writing to stdout and, when cfg.File is
// set, to a rotated log file. The returned closer releases the file.
func Setup(cfg config.LogConfig) io.Closer {
	if cfg.File == "" {
		SetupJSON(cfg.Level)

		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	slog.SetDefault(slog.New(
		slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), &slog.HandlerOptions{Level: cfg.Level}),
	))

	return rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
