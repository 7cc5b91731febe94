// Package memory is a sheets.Mirror kept in process memory. It records
// every table it receives, which makes it useful for tests and dry runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"pengeluaran/internal/core"
	"pengeluaran/internal/sheets"
)

type Mirror struct {
	mu       sync.Mutex
	current  []core.Expense
	replaces int
	fail     error
}

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// Replace stores a copy of records. It returns the error set by FailWith
// without touching the held table.
func (m *Mirror) Replace(_ context.Context, records []core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.current = slices.Clone(records)
	m.replaces++
	return nil
}

// FailWith makes subsequent calls to Replace return err; nil clears it.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// Rows returns the table held by the mirror.
func (m *Mirror) Rows() []core.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.current)
}

// Replaces counts the successful calls to Replace.
func (m *Mirror) Replaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces
}
