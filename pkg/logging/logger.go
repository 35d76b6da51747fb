// Package logging configures the zerolog logger shared by the IdleMMO client,
// the proxy and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer

	// Application is attached to every entry as "app" when set,
	// e.g. "IdleTracker/1.2.0".
	Application string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Application != "" {
		ctx = ctx.Str("app", cfg.Application)
	}
	logger := ctx.Logger()

	log.Logger = logger

	return logger
}

// ParseLevel validates a level name from configuration.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: queue and cache internals
//   - Task enqueued (task_id, endpoint, queue_depth)
//   - Cache hit/miss, window deferrals
//   - Token quota updates for unknown tokens
//
// Info: normal lifecycle
//   - Client started / shutting down
//   - Rate limit window passed, resuming
//   - Proxy listening
//
// Warn: degraded but recovering
//   - Rate limited (reset_at, attempt, backoff)
//   - Error statuses returned to callers
//   - Malformed rate limit headers
//   - Cache, journal or Redis failures
//
// Error: a request could not be completed
//   - Transport failures
//   - Recovered panics in the worker
//
// Context Fields:
//   - component: idlemmo-client, ratelimit, tokenpool, proxy, journal, ...
//   - task_id: Future ID of the queued request
//   - endpoint: endpoint name (e.g. item_inspection)
//   - status: HTTP status code
//   - class: error class (client, server, rate_limit, network, decode, shutdown, internal)
//   - token: token fingerprint, never the token itself
//   - reset_at, wait, backoff: rate limit timing
