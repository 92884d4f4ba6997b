package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Supported output formats for New.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatZap    = "zap"
	FormatZapDev = "zap-dev"
)

// New builds a Logger for the given format and level. Slog formats write to w;
// zap formats write to stderr as configured by zap.
func New(format, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText, FormatJSON:
		lvl, err := parseSlogLevel(level)
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(format, FormatJSON) {
			return NewSlogJSON(w, lvl), nil
		}
		return NewSlogText(w, lvl), nil
	case FormatZap:
		return NewZap(level, false)
	case FormatZapDev:
		return NewZap(level, true)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func parseSlogLevel(level string) (slog.Level, error) {
	var lvl slog.Level
	if level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("unknown log level %q: %w", level, err)
	}
	return lvl, nil
}
