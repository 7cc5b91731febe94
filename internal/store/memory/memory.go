// Package memory is a store.Backend kept in a process-local slice. Nothing
// survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"pengeluaran/internal/core"
	"pengeluaran/internal/store"
)

type Backend struct {
	mu    sync.Mutex
	items []core.Expense
}

var _ store.Backend = (*Backend)(nil)

// New returns a backend holding seed in order. Seed records without an id
// get a random one.
func New(seed ...core.Expense) *Backend {
	b := &Backend{items: make([]core.Expense, 0, len(seed))}
	for _, e := range seed {
		b.items = append(b.items, withID(e))
	}
	return b
}

func (b *Backend) ReadAll(_ context.Context) ([]core.Expense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items), nil
}

// Append stores the expense under a fresh id.
func (b *Backend) Append(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = ""
	e = withID(e)
	b.mu.Lock()
	b.items = append(b.items, e)
	b.mu.Unlock()
	return e, nil
}

// DeleteAt removes one record. An empty backend behaves like a missing
// table and ignores the call.
func (b *Backend) DeleteAt(_ context.Context, index int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return nil
	}
	if index < 0 || index >= len(b.items) {
		return fmt.Errorf("%w: %d of %d", store.ErrIndexOutOfRange, index, len(b.items))
	}
	b.items = slices.Delete(b.items, index, index+1)
	return nil
}

func withID(e core.Expense) core.Expense {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return e
}
