package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mitchellh/go-homedir"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func ResolveLogLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// InitLogger sets up the package logger. Level "none" discards every
// record. With an empty logFile records go to stderr as text, otherwise
// they are appended to logFile as JSON; the returned file (if any) must be
// closed by the caller.
func InitLogger(level string, logFile string) (*os.File, error) {
	if level == "none" {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return nil, nil
	}
	logLevel, err := ResolveLogLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{
		Level: logLevel,
	}
	if logFile == "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil, nil
	}
	path, err := homedir.Expand(logFile)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	logger = slog.New(slog.NewJSONHandler(f, opts))
	slog.SetDefault(logger)
	return f, nil
}
