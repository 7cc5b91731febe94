// Package store persists expense records and keeps the loaded collection
// cached until the next write.
package store

import (
	"context"
	"errors"

	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
)

var (
	// ErrMalformed reports persisted state that cannot be parsed. Load
	// returns it together with an empty collection; callers report it and
	// keep going.
	ErrMalformed = errors.New("malformed expense table")

	// ErrNotFound is returned when a surrogate id matches no record.
	ErrNotFound = errors.New("expense not found")

	// ErrIndexOutOfRange is returned by DeleteAt for a position outside the
	// full collection.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Ports used by the presentation layer and the backends.
type (
	// Store is the record store seen by callers. Positions always refer to
	// the full, unfiltered collection in load order.
	Store interface {
		Load(ctx context.Context) ([]core.Expense, error)
		// Append returns e as stored, carrying the id the backend gave it.
		Append(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteAt(ctx context.Context, index int) error
		DeleteByID(ctx context.Context, id string) (core.Expense, error)
		// DeleteFiltered removes the record shown at pos in the view
		// selected by c. Resolving and deleting happen under one write lock.
		DeleteFiltered(ctx context.Context, c filter.Criteria, pos int) (core.Expense, error)
		Invalidate()
	}

	// Backend is raw persistence with no caching. ReadAll returns records
	// in load order with their ids set; a missing table is an empty result.
	// Append returns the record as ReadAll would return it.
	Backend interface {
		ReadAll(ctx context.Context) ([]core.Expense, error)
		Append(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteAt(ctx context.Context, index int) error
	}
)
