// Package logging sets up slog loggers for the daemon's modules.
// Output goes to stdout and, when journald is reachable, to the systemd journal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config selects level and output format.
type Config struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

var (
	mu               sync.Mutex
	levelVar         = &slog.LevelVar{}
	format           = "text"
	output           = io.Writer(os.Stdout)
	journalAvailable = IsJournalAvailable
	loggers          = make(map[string]*slog.Logger)
)

// Initialize applies cfg to the slog default and to loggers returned by
// later GetLogger calls. Loggers already held by callers keep their old
// handler; only the level change reaches them.
func Initialize(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	levelVar.Set(ParseLevel(cfg.Level))
	format = "text"
	if strings.EqualFold(cfg.Format, "json") {
		format = "json"
	}

	handler := createHandler()
	for module := range loggers {
		loggers[module] = slog.New(handler).With("module", module)
	}
	slog.SetDefault(slog.New(handler))
}

// GetLogger returns the logger for module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[module]; ok {
		return l
	}
	l := slog.New(createHandler()).With("module", module)
	loggers[module] = l
	return l
}

// SetOutput redirects stdout logging, for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	journalAvailable = func() bool { return false }
	mu.Unlock()
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func createHandler() slog.Handler {
	opts := &slog.HandlerOptions{Level: levelVar}

	var stdout slog.Handler
	if format == "json" {
		stdout = slog.NewJSONHandler(output, opts)
	} else {
		stdout = slog.NewTextHandler(output, opts)
	}

	if !journalAvailable() {
		return stdout
	}
	return NewMultiHandler(stdout, NewJournalHandler(levelVar))
}
