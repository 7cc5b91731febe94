package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"pengeluaran/internal/cache"
	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
)

const snapshotKey = "expenses"

// Cached wraps a Backend with the load cache. Concurrent loads share one
// backend read; writes are serialized and drop the cached snapshot.
type Cached struct {
	backend Backend
	cache   *cache.LRUCache[[]core.Expense]
	group   singleflight.Group

	writeMu sync.Mutex

	genMu sync.Mutex
	gen   uint64
}

var _ Store = (*Cached)(nil)

// NewCached returns a Store over b.
func NewCached(b Backend) *Cached {
	return &Cached{
		backend: b,
		cache:   cache.NewLRUCache[[]core.Expense](1, 0),
	}
}

// Load returns a copy of the current collection. A malformed table yields an
// empty collection together with an error wrapping ErrMalformed.
func (c *Cached) Load(ctx context.Context) ([]core.Expense, error) {
	if records, ok := c.cache.Get(snapshotKey); ok {
		return slices.Clone(records), nil
	}

	v, err, shared := c.group.Do(snapshotKey, func() (any, error) {
		gen := c.generation()
		records, err := c.backend.ReadAll(ctx)
		if err != nil {
			return nil, err
		}
		if records == nil {
			records = []core.Expense{}
		}
		// a write that landed while reading makes this snapshot stale
		if gen == c.generation() {
			c.cache.Set(snapshotKey, records)
		}
		slog.DebugContext(ctx, "Expenses loaded", "component", "store", "records", len(records))
		return records, nil
	})
	if err != nil {
		if errors.Is(err, ErrMalformed) {
			slog.WarnContext(ctx, "Expense table is malformed", "component", "store", "error", err)
			return []core.Expense{}, err
		}
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	if shared {
		slog.DebugContext(ctx, "Shared concurrent expense load", "component", "store")
	}
	return slices.Clone(v.([]core.Expense)), nil
}

// Append validates e and persists it after the existing records.
func (c *Cached) Append(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	defer c.Invalidate()

	stored, err := c.backend.Append(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("append expense: %w", err)
	}
	return stored, nil
}

// DeleteAt removes the record at index of the full collection.
func (c *Cached) DeleteAt(ctx context.Context, index int) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.deleteAt(ctx, index)
}

func (c *Cached) deleteAt(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	defer c.Invalidate()
	if err := c.backend.DeleteAt(ctx, index); err != nil {
		return fmt.Errorf("delete expense %d: %w", index, err)
	}
	return nil
}

// DeleteByID resolves id against the current collection and deletes that
// position.
func (c *Cached) DeleteByID(ctx context.Context, id string) (core.Expense, error) {
	return c.deleteResolved(ctx, func(records []core.Expense) (int, error) {
		if idx := slices.IndexFunc(records, func(e core.Expense) bool { return e.ID == id }); idx >= 0 {
			return idx, nil
		}
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
}

// DeleteFiltered deletes the pos-th record of the view selected by crit.
func (c *Cached) DeleteFiltered(ctx context.Context, crit filter.Criteria, pos int) (core.Expense, error) {
	return c.deleteResolved(ctx, func(records []core.Expense) (int, error) {
		return filter.ResolvePosition(records, crit, pos)
	})
}

// deleteResolved loads, picks an index and deletes it without letting
// another write in between.
func (c *Cached) deleteResolved(ctx context.Context, resolve func([]core.Expense) (int, error)) (core.Expense, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	records, err := c.Load(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	idx, err := resolve(records)
	if err != nil {
		return core.Expense{}, err
	}
	if err := c.deleteAt(ctx, idx); err != nil {
		return core.Expense{}, err
	}
	return records[idx], nil
}

// Invalidate drops the cached collection so the next Load reads the backend.
func (c *Cached) Invalidate() {
	c.genMu.Lock()
	c.gen++
	c.genMu.Unlock()

	c.group.Forget(snapshotKey)
	c.cache.Purge()
}

// CacheStats reports how often Load was served without reading the backend.
func (c *Cached) CacheStats() cache.Stats {
	return c.cache.Stats()
}

func (c *Cached) generation() uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.gen
}

// Close releases the backend when it holds resources.
func (c *Cached) Close() error {
	c.Invalidate()
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
