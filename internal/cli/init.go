// Package cli holds the start-up steps shared by cmd/pengeluaran,
// cmd/pengeluaran-worker and cmd/pengeluaranctl.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pengeluaran/internal/backend"
	"pengeluaran/internal/config"
	applog "pengeluaran/internal/log"
)

// SetupLogger installs a text logger writing to w at the given LOG_LEVEL as
// the slog default. An unknown level logs a warning and means info.
func SetupLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile reads .env when present. A missing file is normal outside
// development.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig exits the process when the environment is invalid.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatal(logger, "Configuration validation failed", err)
	}
	return cfg
}

// OpenBackend builds the store and expense service described by cfg. The
// caller owns the returned Cleanup.
func OpenBackend(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bc)
}

// InitBackend is OpenBackend for long-running binaries: it exits on failure.
func InitBackend(ctx context.Context, logger *slog.Logger, cfg *config.Config) *backend.BackendResult {
	res, err := OpenBackend(ctx, logger, cfg)
	if err != nil {
		fatal(logger, "Failed to initialize backend", err, "backend", cfg.DataBackend)
	}
	return res
}

func fatal(logger *slog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{"error", err}, args...)...)
	os.Exit(1)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. After
// the signal, cleanup runs with timeout to finish, then done is closed.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	return shutdownOn(logger, timeout, cleanup, syscall.SIGINT, syscall.SIGTERM)
}

func shutdownOn(logger *slog.Logger, timeout time.Duration, cleanup func(context.Context), sigs ...os.Signal) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	received := make(chan os.Signal, 1)
	signal.Notify(received, sigs...)

	go func() {
		defer close(done)
		sig := <-received
		signal.Stop(received)
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		if cleanup == nil {
			logger.Info("Shutdown complete")
			return
		}
		cleanupCtx, stop := context.WithTimeout(context.Background(), timeout)
		defer stop()
		cleanup(cleanupCtx)
		if cleanupCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached", "timeout", timeout)
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the signal arrived and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
