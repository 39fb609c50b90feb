package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"findash/internal/auth"
	"findash/internal/cli"
	"findash/internal/dashboard"
	apphttp "findash/internal/http"
	"findash/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	store, err := auth.NewFileStore(cfg.TokenFile)
	if err != nil {
		logger.Error("Failed to initialize credential store", log.FieldError, err.Error(), "path", cfg.TokenFile)
		os.Exit(1)
	}

	client := cli.InitAPIClient(logger, cfg, store)
	snapshots := cli.InitSnapshotStore(logger, cfg.SnapshotDBPath)
	defer snapshots.Close()

	sessions := auth.NewManager(store, client, logger)

	// Verify any persisted token before serving; an invalid one is cleared
	// and the user simply lands on the login page.
	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), cfg.APITimeout)
	if err := sessions.Restore(restoreCtx); err != nil {
		logger.Warn("Session restore failed", log.FieldError, err.Error())
	}
	restoreCancel()

	dash := dashboard.New(client, snapshots, logger, dashboard.Options{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
	})
	defer dash.Close()

	srv := apphttp.NewServer(":"+cfg.Port, sessions, dash, client, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting findash server", "port", cfg.Port, "backend", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
