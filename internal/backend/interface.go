// Package backend builds the record store and the expense service from
// configuration.
package backend

import (
	"context"
	"slices"

	"pengeluaran/internal/services"
	"pengeluaran/internal/store"
)

// CleanupFunc releases whatever CreateBackend opened.
type CleanupFunc func() error

// BackendResult is the wired service together with the store behind it.
type BackendResult struct {
	Service *services.ExpenseService
	Store   store.Store
	Cleanup CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects a persistence backend and the optional change events.
type Config struct {
	Type BackendType

	CSVPath      string
	SQLiteDBPath string

	// An empty AMQPURL disables events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	CSVBackend    BackendType = "csv"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// types lists the supported backends, default first.
var types = []BackendType{CSVBackend, SQLiteBackend, MemoryBackend}

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool { return slices.Contains(types, bt) }

// Persistent reports whether records survive a restart.
func (bt BackendType) Persistent() bool { return bt == CSVBackend || bt == SQLiteBackend }

// TypeNames returns the supported backend names, default first.
func TypeNames() []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
