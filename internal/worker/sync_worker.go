// Package worker keeps external mirrors of the expense table in step with
// the record store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pengeluaran/internal/amqp"
	"pengeluaran/internal/core"
	"pengeluaran/internal/sheets"
	"pengeluaran/internal/store"
)

// Source is the part of the record store the worker reads.
type Source interface {
	Load(ctx context.Context) ([]core.Expense, error)
	Invalidate()
}

// SyncWorker rewrites the mirror from the store whenever a change event
// arrives. Events only trigger a sync; their payload is informational.
type SyncWorker struct {
	source Source
	mirror sheets.Mirror

	mu     sync.Mutex
	synced int
}

func NewSyncWorker(source Source, mirror sheets.Mirror) *SyncWorker {
	return &SyncWorker{source: source, mirror: mirror}
}

// HandleEvent is an amqp.EventHandler.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	slog.InfoContext(ctx, "Processing expense event",
		"component", "worker",
		"type", ev.Type,
		"expense_id", ev.ID,
		"timestamp", ev.Timestamp)

	// another process wrote the table
	w.source.Invalidate()
	return w.SyncAll(ctx)
}

// SyncAll mirrors the current table. A malformed table is skipped so the
// mirror keeps its last good copy.
func (w *SyncWorker) SyncAll(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	records, err := w.source.Load(ctx)
	if errors.Is(err, store.ErrMalformed) {
		slog.WarnContext(ctx, "Skipping sync of malformed expense table", "component", "worker", "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}

	if err := w.mirror.Replace(ctx, records); err != nil {
		return fmt.Errorf("mirror expenses: %w", err)
	}
	w.synced++

	slog.InfoContext(ctx, "Expense table synced", "component", "worker", "records", len(records), "syncs", w.synced)
	return nil
}

// Syncs returns how many successful syncs ran.
func (w *SyncWorker) Syncs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.synced
}
