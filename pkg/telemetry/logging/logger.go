package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Config contains configuration for building a logger.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string

	// Format is the output format ("json", "text").
	Format string

	// Writer is the output writer (defaults to os.Stderr).
	Writer io.Writer

	// AddSource includes file and line number in logs.
	AddSource bool

	// RedactPHI enables redaction of patient identifiers.
	RedactPHI bool

	// RedactPatterns contains additional redaction patterns applied on
	// top of the built-in ones.
	RedactPatterns []Pattern
}

// New creates a structured logger from the given configuration.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text", "TEXT":
		handler = slog.NewTextHandler(writer, opts)
	case "json", "JSON", "":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}

	if cfg.RedactPHI {
		handler = NewRedactingHandler(handler, NewRedactor(cfg.RedactPatterns))
	}

	return slog.New(handler), nil
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch levelStr {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", levelStr)
	}
}
