package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Config carries the fields stamped on every log line
type Config struct {
	ServiceName string
	Environment string
	InstanceID  string
	Level       string
	// Console switches to human readable output for local runs
	Console bool
}

// NewLogger creates a structured zerolog.Logger writing to stdout. Empty
// context fields are omitted.
func NewLogger(cfg Config) zerolog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(out io.Writer, cfg Config) zerolog.Logger {
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out}
	}

	ctx := zerolog.New(out).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		ctx = ctx.Str("env", cfg.Environment)
	}
	if cfg.InstanceID != "" {
		ctx = ctx.Str("instance_id", cfg.InstanceID)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
