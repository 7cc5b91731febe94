package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"pengeluaran/internal/analytics"
	"pengeluaran/internal/cache"
	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	"pengeluaran/internal/insights"
	"pengeluaran/internal/store"
)

// EventPublisher announces store changes. Publishing is best effort.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense) error
	PublishExpenseDeleted(ctx context.Context, e core.Expense) error
}

// ExpenseService runs load, filter, aggregate and evaluate for the
// presentation layers, and performs writes followed by change events.
type ExpenseService struct {
	store  store.Store
	events EventPublisher
}

// NewExpenseService wires a store and an optional publisher (nil disables
// events).
func NewExpenseService(s store.Store, events EventPublisher) *ExpenseService {
	return &ExpenseService{store: s, events: events}
}

// Snapshot is the full collection together with the filtered view.
type Snapshot struct {
	All      []core.Expense
	Records  []core.Expense
	Criteria filter.Criteria

	// LoadErr is set when the persisted table could not be parsed. All and
	// Records are then empty.
	LoadErr error
}

func (s Snapshot) Summary() analytics.Summary { return analytics.Summarize(s.Records) }
func (s Snapshot) Report() insights.Report    { return insights.Evaluate(s.Records) }

// Snapshot loads the store and applies c. Only unrecoverable load errors are
// returned; a malformed table ends up in Snapshot.LoadErr.
func (s *ExpenseService) Snapshot(ctx context.Context, c filter.Criteria) (Snapshot, error) {
	all, err := s.store.Load(ctx)
	snap := Snapshot{Criteria: c}
	switch {
	case errors.Is(err, store.ErrMalformed):
		slog.WarnContext(ctx, "Serving empty view for malformed table", "component", "expense", "error", err)
		snap.LoadErr = err
		all = []core.Expense{}
	case err != nil:
		return Snapshot{}, err
	}
	snap.All = all
	snap.Records = filter.Apply(all, c)
	return snap, nil
}

// Add validates and stores e, and returns it with the id the store gave it.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := s.store.Append(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense created",
		"component", "expense",
		"expense_id", created.ID,
		"amount", created.Amount.String(),
		"category", created.Category)

	if s.events != nil {
		if err := s.events.PublishExpenseCreated(ctx, created); err != nil {
			// the record is stored; the mirror catches up on the next event
			slog.ErrorContext(ctx, "Failed to publish expense event", "component", "expense", "expense_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// DeleteByID removes the record with the given surrogate id.
func (s *ExpenseService) DeleteByID(ctx context.Context, id string) (core.Expense, error) {
	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	s.deleted(ctx, removed)
	return removed, nil
}

// DeleteFiltered removes the record shown at pos in the view selected by c.
// The position is resolved against the full collection before deleting.
func (s *ExpenseService) DeleteFiltered(ctx context.Context, c filter.Criteria, pos int) (core.Expense, error) {
	removed, err := s.store.DeleteFiltered(ctx, c, pos)
	if err != nil {
		return core.Expense{}, err
	}
	s.deleted(ctx, removed)
	return removed, nil
}

func (s *ExpenseService) deleted(ctx context.Context, e core.Expense) {
	slog.InfoContext(ctx, "Expense deleted", "component", "expense", "expense_id", e.ID)
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseDeleted(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event", "component", "expense", "expense_id", e.ID, "error", err)
	}
}

// Ready reports whether the store can be read.
func (s *ExpenseService) Ready(ctx context.Context) error {
	_, err := s.store.Load(ctx)
	if errors.Is(err, store.ErrMalformed) {
		return nil
	}
	return err
}

// CacheStats returns the store's load cache counters. ok is false when the
// store has no cache.
func (s *ExpenseService) CacheStats() (stats cache.Stats, ok bool) {
	c, ok := s.store.(interface{ CacheStats() cache.Stats })
	if !ok {
		return cache.Stats{}, false
	}
	return c.CacheStats(), true
}

// Close closes the store and the publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.events.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
