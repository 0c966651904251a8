// Package config loads runtime settings from a .env file and the
// environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort     = "8080"
	defaultDebounce = 200 * time.Millisecond
)

// Cfg holds all runtime configuration. Command-line flags override it.
type Cfg struct {
	PatternDir    string        // KANUN_PATTERN_DIR: extra YAML pattern tables
	WatchPatterns bool          // KANUN_WATCH_PATTERNS=true reloads tables on change
	Normalize     bool          // KANUN_NORMALIZE=true enables NFC normalization
	ListenAddr    string        // KANUN_LISTEN_ADDR, or ":" + PORT
	WatchDebounce time.Duration // KANUN_WATCH_DEBOUNCE=200ms
	LogLevel      slog.Level    // LOG_LEVEL=debug|info|warn|error
}

// Load reads .env (if present) then environment variables and returns Cfg.
func Load() (*Cfg, error) {
	// Best-effort: a missing .env is not an error.
	_ = godotenv.Load()

	cfg := &Cfg{
		PatternDir:    strings.TrimSpace(os.Getenv("KANUN_PATTERN_DIR")),
		WatchPatterns: parseBool(os.Getenv("KANUN_WATCH_PATTERNS"), false),
		Normalize:     parseBool(os.Getenv("KANUN_NORMALIZE"), false),
		WatchDebounce: defaultDebounce,
	}

	cfg.ListenAddr = strings.TrimSpace(os.Getenv("KANUN_LISTEN_ADDR"))
	if cfg.ListenAddr == "" {
		port := strings.TrimSpace(os.Getenv("PORT"))
		if port == "" {
			port = defaultPort
		}
		cfg.ListenAddr = ":" + port
	}

	if raw := strings.TrimSpace(os.Getenv("KANUN_WATCH_DEBOUNCE")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing KANUN_WATCH_DEBOUNCE: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("KANUN_WATCH_DEBOUNCE must not be negative, got %s", d)
		}
		cfg.WatchDebounce = d
	}

	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown LOG_LEVEL %q", s)
	}
}

// NewLogger returns a text logger writing to w at the configured level.
func (c *Cfg) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

func parseBool(raw string, def bool) bool {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return def
	case raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes"):
		return true
	case raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no"):
		return false
	default:
		return def
	}
}
