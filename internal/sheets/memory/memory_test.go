package memory

import (
	"context"
	"errors"
	"testing"

	"pengeluaran/internal/core"
)

func TestMirrorReplace(t *testing.T) {
	ctx := context.Background()
	m := New()

	records := []core.Expense{
		{Date: core.NewDate(2024, 1, 1), Amount: core.Rupiah(10), Category: core.Other, Description: "a"},
		{Date: core.NewDate(2024, 1, 2), Amount: core.Rupiah(20), Category: core.Other, Description: "b"},
	}
	if err := m.Replace(ctx, records); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	records[0].Description = "changed"

	rows := m.Rows()
	if len(rows) != 2 || rows[0].Description != "a" {
		t.Fatalf("Rows() = %+v, want a copy of the replaced table", rows)
	}

	if err := m.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace(nil) error = %v", err)
	}
	if len(m.Rows()) != 0 || m.Replaces() != 2 {
		t.Fatalf("after empty replace: rows=%d replaces=%d", len(m.Rows()), m.Replaces())
	}
}

func TestMirrorFailWith(t *testing.T) {
	ctx := context.Background()
	m := New()
	boom := errors.New("quota exceeded")

	m.FailWith(boom)
	err := m.Replace(ctx, []core.Expense{{Description: "x"}})
	if !errors.Is(err, boom) {
		t.Fatalf("Replace() error = %v, want %v", err, boom)
	}
	if m.Replaces() != 0 {
		t.Fatalf("Replaces() = %d, want 0", m.Replaces())
	}

	m.FailWith(nil)
	if err := m.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace() after clearing error = %v", err)
	}
}
