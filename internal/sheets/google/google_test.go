package google

import (
	"context"
	"strings"
	"testing"

	"pengeluaran/internal/core"
)

func TestToRows(t *testing.T) {
	rows := toRows([]core.Expense{
		{Date: core.NewDate(2024, 1, 1), Amount: core.Rupiah(100000), Category: core.FoodAndDrink, Description: "makan"},
		{Date: core.NewDate(2024, 1, 2), Amount: core.MoneyFromFloat(12.5), Category: core.Transport, Description: "bus"},
	})

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "date" || rows[0][3] != "description" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "2024-01-01" || rows[1][1] != "100000" || rows[1][2] != "Makanan & Minuman" {
		t.Errorf("unexpected row %v", rows[1])
	}
	if rows[2][1] != "12.5" {
		t.Errorf("unexpected amount %v", rows[2][1])
	}
}

func TestToRowsEmpty(t *testing.T) {
	if rows := toRows(nil); len(rows) != 1 {
		t.Fatalf("expected only the header, got %v", rows)
	}
}

func TestQuoteSheet(t *testing.T) {
	tests := map[string]string{
		"Pengeluaran":    "Pengeluaran",
		"Data_2024":      "Data_2024",
		"My Sheet":       "'My Sheet'",
		"Bob's expenses": "'Bob''s expenses'",
	}
	for in, want := range tests {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewFromEnvValidation(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	ctx := context.Background()

	if _, err := NewFromEnv(ctx, "", "Pengeluaran"); err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Errorf("expected missing spreadsheet error, got %v", err)
	}
	if _, err := NewFromEnv(ctx, "sheet-id", "Pengeluaran"); err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Errorf("expected missing credentials error, got %v", err)
	}
}

func TestReplaceWithoutService(t *testing.T) {
	if err := (&Mirror{}).Replace(context.Background(), nil); err == nil {
		t.Fatal("expected error without service")
	}
}
