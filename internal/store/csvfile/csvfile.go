// Package csvfile keeps expenses in a flat CSV table with the columns
// date, amount, category, description. Every mutation rewrites the file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pengeluaran/internal/core"
	"pengeluaran/internal/store"
)

// Header is the first row of every table written by this package.
var Header = []string{"date", "amount", "category", "description"}

// idNamespace seeds the content-derived record ids.
var idNamespace = uuid.MustParse("8d3c54a2-6f0e-4b7a-9c1d-2e5f7a9b0c13")

type Backend struct {
	path string
	mu   sync.Mutex
}

var _ store.Backend = (*Backend)(nil)

func New(path string) *Backend {
	return &Backend{path: path}
}

func (b *Backend) Path() string { return b.path }

// ReadAll loads the table. A missing file is an empty collection.
func (b *Backend) ReadAll(ctx context.Context) ([]core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	records, _, err := b.read()
	return records, err
}

// Append writes e as the last row and returns it with the id a later read
// derives for it.
func (b *Backend) Append(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := ctx.Err(); err != nil {
		return core.Expense{}, err
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	records, _, err := b.read()
	if err != nil {
		return core.Expense{}, err
	}
	if err := b.write(append(records, e)); err != nil {
		return core.Expense{}, err
	}
	// ids depend on the rows before, so read back rather than derive here
	stored, _, err := b.read()
	if err != nil {
		return core.Expense{}, err
	}
	slog.InfoContext(ctx, "Expense appended to CSV", "component", "store", "path", b.path, "records", len(stored))
	return stored[len(stored)-1], nil
}

// DeleteAt removes one row. Deleting from a file that does not exist is a
// no-op.
func (b *Backend) DeleteAt(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	records, exists, err := b.read()
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("%w: %d of %d", store.ErrIndexOutOfRange, index, len(records))
	}
	records = slices.Delete(records, index, index+1)
	if err := b.write(records); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense removed from CSV", "component", "store", "path", b.path, "index", index)
	return nil
}

func (b *Backend) read() ([]core.Expense, bool, error) {
	f, err := os.Open(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []core.Expense{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", b.path, err)
	}
	return records, true, nil
}

// write replaces the file through a temporary sibling so a crash never
// leaves half a table behind.
func (b *Backend) write(records []core.Expense) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

// Decode parses a table. An empty input is an empty collection; anything
// else that does not follow the four-column layout fails with
// store.ErrMalformed. Ids are derived from the row content and the number
// of identical rows before it.
func Decode(r io.Reader) ([]core.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []core.Expense{}, nil
	}
	if err != nil {
		return nil, malformed(err)
	}
	if !isHeader(head) {
		return nil, fmt.Errorf("%w: line 1: unexpected header %q", store.ErrMalformed, strings.Join(head, ","))
	}

	records := []core.Expense{}
	seen := map[string]int{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		line, _ := cr.FieldPos(0)

		e, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", store.ErrMalformed, line, err)
		}
		key := strings.Join([]string{e.Date.String(), e.Amount.String(), string(e.Category), e.Description}, "\x1f")
		e.ID = uuid.NewSHA1(idNamespace, []byte(key+"\x1f"+strconv.Itoa(seen[key]))).String()
		seen[key]++
		records = append(records, e)
	}
	return records, nil
}

func isHeader(row []string) bool {
	for i, col := range row {
		col = strings.TrimPrefix(col, "\ufeff")
		if strings.TrimSpace(col) != Header[i] {
			return false
		}
	}
	return true
}

func parseRow(row []string) (core.Expense, error) {
	date, err := core.ParseDate(row[0])
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := core.ParseStoredAmount(row[1])
	if err != nil {
		return core.Expense{}, err
	}
	category := strings.TrimSpace(row[2])
	if category == "" {
		return core.Expense{}, core.ErrInvalidCategory
	}
	return core.Expense{
		Date:        date,
		Amount:      amount,
		Category:    core.Category(category),
		Description: row[3],
	}, nil
}

func malformed(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: line %d: %v", store.ErrMalformed, pe.Line, pe.Err)
	}
	return fmt.Errorf("%w: %v", store.ErrMalformed, err)
}

// Encode writes the header followed by one row per record. Ids are not
// written.
func Encode(w io.Writer, records []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range records {
		row := []string{e.Date.String(), e.Amount.String(), string(e.Category), e.Description}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
