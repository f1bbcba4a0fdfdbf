package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Warnf prints a one-line user warning unless quiet is set.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(dst, "WARN: "+format+"\n", a...)
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}

// NewLogger builds the structured run logger on dst. format is "text" or
// "json"; quiet raises the floor to warn.
func NewLogger(dst io.Writer, format, level string, quiet bool) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if quiet && lvl < slog.LevelWarn {
		lvl = slog.LevelWarn
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(dst, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(dst, hopts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q", format)
}
