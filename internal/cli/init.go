// Package cli provides common initialization utilities shared by
// cmd/findash and cmd/findash-cli.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"findash/internal/api"
	"findash/internal/auth"
	"findash/internal/config"
	"findash/internal/log"
	"findash/internal/storage"
)

// SetupLogger initializes structured logging and sets it as the default.
func SetupLogger() *log.Logger {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitAPIClient wires the REST client against the configured backend. The
// token store doubles as the client's token source, so a 401 anywhere clears
// the persisted credentials.
func InitAPIClient(logger *log.Logger, cfg *config.Config, store auth.Store) *api.Client {
	client, err := api.New(api.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Tokens:  store,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("Failed to initialize API client", log.FieldError, err.Error(), "base_url", cfg.APIBaseURL)
		os.Exit(1)
	}
	return client
}

// InitSnapshotStore opens the offline snapshot database.
// Returns the store or exits the process on failure.
func InitSnapshotStore(logger *log.Logger, dbPath string) *storage.SnapshotStore {
	store, err := storage.NewSnapshotStore(dbPath)
	if err != nil {
		logger.Error("Failed to initialize snapshot store", log.FieldError, err.Error(), "path", dbPath)
		os.Exit(1)
	}
	return store
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
