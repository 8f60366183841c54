// Package cli holds the start-up steps shared by cmd/carlog,
// cmd/reminder-worker and cmd/carlogctl.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carlog/internal/config"
	"carlog/internal/log"
	"carlog/internal/storage"
)

// NewLogger builds the process logger from the configured level and makes
// it the slog default.
func NewLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// Bootstrap loads .env and the environment, sets up logging and validates
// the configuration. It exits the process when validation fails.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	config.LoadDotEnv()
	cfg := config.Load()
	logger := NewLogger(cfg, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitSQLite opens the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
