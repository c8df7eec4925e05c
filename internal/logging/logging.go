// Package logging builds the slog logger used by the yamlite tool.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LevelCritical sits above slog.LevelError for the CRITICAL level name.
const LevelCritical = slog.Level(12)

// Settings configures the tool. Each field is read from the environment
// with the YAMLITE_ prefix, e.g. YAMLITE_LOG_LEVEL.
type Settings struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	Strict    bool   `envconfig:"STRICT" default:"false"`
}

// LoadSettings reads Settings from the environment, after loading a .env
// file from the working directory if there is one.
func LoadSettings() (Settings, error) {
	_ = godotenv.Load() // .env is optional

	var s Settings
	if err := envconfig.Process("YAMLITE", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to load settings from env: %w", err)
	}
	return s, nil
}

// ParseLevel maps a level name to a slog level. Names are case-insensitive;
// WARNING and CRITICAL are accepted alongside the slog names.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// New returns a logger writing to w in the configured level and format.
func New(s Settings, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l >= LevelCritical {
					return slog.String(a.Key, "CRITICAL")
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch strings.ToLower(s.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", s.LogFormat)
	}

	return slog.New(handler), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelCritical}))
}
