// Package sqlite stores expenses in a local SQLite database. Load order is
// insertion order (row id ascending).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"

	"pengeluaran/internal/core"
	"pengeluaran/internal/store"
)

const (
	selectAll = `SELECT id, date, amount, category, description FROM expenses ORDER BY id`
	insertOne = `INSERT INTO expenses (date, amount, category, description) VALUES (?, ?, ?, ?)`
	idAt      = `SELECT id FROM expenses ORDER BY id LIMIT 1 OFFSET ?`
	countAll  = `SELECT COUNT(*) FROM expenses`
	deleteOne = `DELETE FROM expenses WHERE id = ?`
)

type Backend struct {
	db *sql.DB
}

var _ store.Backend = (*Backend)(nil)

// Open creates the database directory if needed, opens dbPath and runs the
// embedded migrations.
func Open(dbPath string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("SQLite schema ready", "component", "store", "path", dbPath, "version", version)
	return &Backend{db: db}, nil
}

func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *Backend) ReadAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := b.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	records := []core.Expense{}
	for rows.Next() {
		var (
			id                           int64
			date, amount, category, desc string
		)
		if err := rows.Scan(&id, &date, &amount, &category, &desc); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e, err := toExpense(id, date, amount, category, desc)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", store.ErrMalformed, id, err)
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return records, nil
}

func toExpense(id int64, date, amount, category, desc string) (core.Expense, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, err
	}
	m, err := core.ParseStoredAmount(amount)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          strconv.FormatInt(id, 10),
		Date:        d,
		Amount:      m,
		Category:    core.Category(category),
		Description: desc,
	}, nil
}

func (b *Backend) Append(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	res, err := b.db.ExecContext(ctx, insertOne, e.Date.String(), e.Amount.String(), string(e.Category), e.Description)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("read inserted id: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"component", "store",
		"id", e.ID,
		"date", e.Date.String(),
		"amount", e.Amount.String(),
		"category", e.Category)
	return e, nil
}

// DeleteAt removes the row at the given load-order position. An empty table
// is treated like a missing store.
func (b *Backend) DeleteAt(ctx context.Context, index int) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, countAll).Scan(&total); err != nil {
		return fmt.Errorf("count expenses: %w", err)
	}
	if total == 0 {
		return nil
	}
	if index < 0 || index >= total {
		return fmt.Errorf("%w: %d of %d", store.ErrIndexOutOfRange, index, total)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, idAt, index).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", store.ErrIndexOutOfRange, index)
		}
		return fmt.Errorf("locate expense %d: %w", index, err)
	}
	if _, err := tx.ExecContext(ctx, deleteOne, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted from SQLite", "component", "store", "id", id, "index", index)
	return nil
}
