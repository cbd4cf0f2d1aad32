// Package htlog builds the command line's [*slog.Logger].
package htlog

import (
	"fmt"
	"io"
	"log/slog"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel parses a level name such as "debug" or "warn+2"
// with the same rules as [slog.Level.UnmarshalText].
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// CheckFormat returns an error if format is not a supported handler format.
func CheckFormat(format string) error {
	switch format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format %q (want %q or %q)", format, FormatText, FormatJSON)
	}
}

// New returns a logger writing to w at the given level and format.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if err := CheckFormat(format); err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: l}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}
