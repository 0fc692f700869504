package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rs/zerolog"
)

// Supported output formats for New.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatConsole = "console"
)

// New builds a Logger writing to w. json and text use slog handlers;
// console uses zerolog's human-friendly writer.
func New(format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		lvl, err := slogLevel(level)
		if err != nil {
			return nil, err
		}
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))), nil
	case FormatText:
		lvl, err := slogLevel(level)
		if err != nil {
			return nil, err
		}
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))), nil
	case FormatConsole:
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		if lvl == zerolog.NoLevel {
			lvl = zerolog.InfoLevel
		}
		zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(lvl).With().Timestamp().Logger()
		return NewZerologLogger(zl), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func slogLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}
