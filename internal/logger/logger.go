// Package logger configures the process-wide structured logger used by the
// CLI and the server package for diagnostics. It wraps log/slog with
// rotating file output via lumberjack, mirroring the layered log
// configuration of the teacher repository's service logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. Init or InitWithConfig must be called
// once at startup; it defaults to a JSON logger on stdout so tests and
// libraries that never call Init still have a usable logger.
var Log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Config configures the logger's level, format and output destination.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	Output     string // stdout, stderr, file
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Init initializes the logger at the given level with JSON output to stdout.
func Init(level string) {
	InitWithConfig(Config{Level: level, Format: "json", Output: "stdout"})
}

// InitWithConfig initializes the logger with full control over format and
// destination, including rotation when writing to a file.
func InitWithConfig(cfg Config) {
	var lvl slog.Level
	switch cfg.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var writer io.Writer
	switch cfg.Output {
	case "stderr":
		writer = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			cfg.FilePath = "logs/router.log"
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			writer = os.Stdout
		} else {
			writer = &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
		}
	default:
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl == slog.LevelDebug}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	Log = slog.New(handler)
}

// WithQuery returns a logger annotated with a query correlation ID.
func WithQuery(queryID string) *slog.Logger {
	return Log.With("query_id", queryID)
}

// WithComponent annotates a logger with the core component name
// (capgraph, cch, customize, potential, server) emitting the log line.
func WithComponent(component string) *slog.Logger {
	return Log.With("component", component)
}
