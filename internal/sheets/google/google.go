// Package google mirrors the expense table into a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pengeluaran/internal/core"
	"pengeluaran/internal/sheets"
)

// Mirror rewrites one sheet with the full record set.
type Mirror struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ sheets.Mirror = (*Mirror)(nil)

// NewFromEnv creates a mirror for sheetName in spreadsheetID using service
// account credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetName string) (*Mirror, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	credentialsJSON, err := credentialsFromEnv(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "component", "sheets", "sheet", sheetName)
	return &Mirror{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func credentialsFromEnv(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", "component", "sheets")
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// Replace clears the four mirrored columns and writes the header plus one
// row per record, in load order.
func (m *Mirror) Replace(ctx context.Context, records []core.Expense) error {
	if m.svc == nil {
		return errors.New("sheets service not initialized")
	}

	cols := fmt.Sprintf("%s!A:D", quoteSheet(m.sheetName))
	if _, err := m.svc.Spreadsheets.Values.Clear(m.spreadsheetID, cols, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", cols, err)
	}

	start := fmt.Sprintf("%s!A1", quoteSheet(m.sheetName))
	vr := &gsheet.ValueRange{Values: toRows(records)}
	if _, err := m.svc.Spreadsheets.Values.Update(m.spreadsheetID, start, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", start, err)
	}

	slog.InfoContext(ctx, "Mirrored expenses to Google Sheets",
		"component", "sheets",
		"sheet", m.sheetName,
		"records", len(records))
	return nil
}

// toRows lays records out as the CSV table does.
func toRows(records []core.Expense) [][]any {
	rows := make([][]any, 0, len(records)+1)
	rows = append(rows, []any{"date", "amount", "category", "description"})
	for _, e := range records {
		rows = append(rows, []any{e.Date.String(), e.Amount.String(), string(e.Category), e.Description})
	}
	return rows
}

// quoteSheet quotes names with spaces or punctuation for A1 notation.
func quoteSheet(name string) string {
	if strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z')
	}) < 0 {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
