package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"pengeluaran/internal/cli"
	apphttp "pengeluaran/internal/http"
	applog "pengeluaran/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)

	level, _ := applog.ParseLevel(cfg.LogLevel)
	srv := apphttp.NewServer(":"+cfg.Port, res.Service, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger: applog.New(applog.Config{
			Level:     level,
			Component: applog.ComponentHTTP,
			Handler:   logger.Handler(),
		}),
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting pengeluaran server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", cfg.AMQPURL != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
