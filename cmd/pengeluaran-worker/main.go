// Command pengeluaran-worker mirrors the expense table into Google Sheets
// whenever an expense change event arrives.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"pengeluaran/internal/amqp"
	"pengeluaran/internal/backend"
	"pengeluaran/internal/cli"
	"pengeluaran/internal/config"
	gsheet "pengeluaran/internal/sheets/google"
	"pengeluaran/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"))

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)
	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("Worker stopped", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}

// run syncs once, then resyncs on every event until ctx is cancelled.
func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	st, err := backend.NewFactory(logger).OpenStore(bc)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.DataBackend, err)
	}
	defer st.Close()

	mirror, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return fmt.Errorf("google sheets client: %w", err)
	}
	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer events.Close()

	logger.Info("Worker started",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName,
		"queue", cfg.AMQPQueue)

	w := worker.NewSyncWorker(st, mirror)
	// changes made while the worker was down
	if err := w.SyncAll(ctx); err != nil {
		logger.Error("Startup sync failed", "error", err)
	}

	err = events.Consume(ctx, w.HandleEvent)
	logger.Info("Worker shutting down", "syncs", w.Syncs())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
