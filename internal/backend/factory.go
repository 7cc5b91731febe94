package backend

import (
	"context"
	"fmt"
	"log/slog"

	"pengeluaran/internal/amqp"
	"pengeluaran/internal/services"
	"pengeluaran/internal/store"
	"pengeluaran/internal/store/csvfile"
	"pengeluaran/internal/store/memory"
	"pengeluaran/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend opens the store, connects the optional event publisher and
// wires both into an expense service.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	st, err := f.OpenStore(config)
	if err != nil {
		return nil, err
	}
	if !config.Type.Persistent() {
		f.logger.WarnContext(ctx, "Records are kept in memory and lost on exit", "backend", config.Type)
	}

	var events services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			events = client
		}
	}

	svc := services.NewExpenseService(st, events)
	return &BackendResult{
		Service: svc,
		Store:   st,
		Cleanup: svc.Close,
	}, nil
}

// OpenStore opens the configured persistence behind the load cache.
func (f *DefaultFactory) OpenStore(config Config) (*store.Cached, error) {
	var b store.Backend
	switch config.Type {
	case CSVBackend:
		b = csvfile.New(config.CSVPath)
		f.logger.Info("Initialized CSV backend", "path", config.CSVPath)
	case SQLiteBackend:
		db, err := sqlite.Open(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		b = db
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		b = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	return store.NewCached(b), nil
}
