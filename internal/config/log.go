package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LogConfig represents the [log] section
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level" mapstructure:"level"`

	// Format is text or json
	Format string `toml:"format" mapstructure:"format"`
}

// ParseLevel returns the slog level for Level
func (l *LogConfig) ParseLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", l.Level)
	}
	return level, nil
}

// Validate validates the log section
func (l *LogConfig) Validate() error {
	if _, err := l.ParseLevel(); err != nil {
		return err
	}
	switch l.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid log format %q (supported: text, json)", l.Format)
	}
}

// NewLogger builds a logger writing to w
func (l *LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.ParseLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
