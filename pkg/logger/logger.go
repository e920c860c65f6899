// Package logger builds the zerolog logger used across the API and keeps the
// process-wide instance that components derive their loggers from.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Format selects how log lines are encoded.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Options describes the process logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Unknown values mean info.
	Level  string
	Format Format
	// Output defaults to os.Stdout.
	Output io.Writer

	// Service, Env and Version are attached to every line when set.
	Service string
	Env     string
	Version string
}

var (
	mu   sync.RWMutex
	base *zerolog.Logger
)

// New builds a logger from opts without touching the process-wide state.
// Caller information is only recorded at debug level and below.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := ParseLevel(opts.Level)
	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	for _, f := range [...]struct{ key, val string }{
		{"service", opts.Service},
		{"env", opts.Env},
		{"version", opts.Version},
	} {
		if f.val != "" {
			ctx = ctx.Str(f.key, f.val)
		}
	}
	return ctx.Logger()
}

// Init builds the process logger and installs it for Get, Component and
// zerolog.Ctx lookups on contexts without a logger.
func Init(opts Options) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	l := New(opts)

	mu.Lock()
	base = &l
	mu.Unlock()
	zerolog.DefaultContextLogger = &l
	return &l
}

// Get returns the process logger. Before Init it returns a JSON logger on stderr.
func Get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		return &l
	}
	return base
}

// Component returns a child of the process logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the process logger. Tests use it to isolate Init calls.
func Reset() {
	mu.Lock()
	base = nil
	mu.Unlock()
	zerolog.DefaultContextLogger = nil
}

// ParseLevel maps a configured level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
