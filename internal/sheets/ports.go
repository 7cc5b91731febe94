// Package sheets defines the outbound port for spreadsheet mirrors of the
// expense table.
package sheets

import (
	"context"

	"pengeluaran/internal/core"
)

// Mirror receives the complete table and replaces whatever it held before.
type Mirror interface {
	Replace(ctx context.Context, records []core.Expense) error
}
