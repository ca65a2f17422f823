package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. LOG_FORMAT=json selects machine
// readable output for deployed environments; anything else, including a
// missing config, gets the text handler. Every record carries the
// environment name so aggregated logs stay attributable.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	if cfg != nil {
		logger = logger.With(slog.String("env", cfg.AppEnv))
	}
	return logger
}
