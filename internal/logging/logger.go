// Package logging builds the slog loggers used by the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	Writer io.Writer
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := ParseLevel(opts.Level)

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	case "console":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: dropTime,
		})), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// dropTime removes the timestamp from console output; batch runs are short
// and the summary carries what matters.
func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
