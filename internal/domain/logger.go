package domain

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Format string // json or console
	Output io.Writer
}

// Logger wraps zerolog with a component prefix.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a new logger instance
func NewLogger(cfg LogConfig) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var zl zerolog.Logger
	if cfg.Format == "json" {
		zl = zerolog.New(output)
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	}

	zl = zl.Level(parseLevel(cfg.Level)).With().
		Timestamp().
		Str("service", "doc-corrector").
		Logger()

	return &Logger{zl: zl}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// WithPrefix returns a new logger tagged with a component name
func (l *Logger) WithPrefix(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// WithFile returns a new logger tagged with the file being processed.
func (l *Logger) WithFile(path string) *Logger {
	return &Logger{zl: l.zl.With().Str("file", path).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }

func (l *Logger) Info() *zerolog.Event { return l.zl.Info() }

func (l *Logger) Warn() *zerolog.Event { return l.zl.Warn() }

func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// DefaultLogger is the default logger instance
var DefaultLogger = NewLogger(LogConfig{Level: "info", Format: "console"})

// SetDefaultLogger replaces DefaultLogger; call it once at startup.
func SetDefaultLogger(l *Logger) {
	if l != nil {
		DefaultLogger = l
	}
}
