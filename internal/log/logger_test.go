package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pengeluaran/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"info":  slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestComponentIsAttached(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentStore, Handler: slog.NewTextHandler(&buf, nil)})
	l.InfoContext(context.Background(), "loaded", FieldRecords, 3)

	out := buf.String()
	if !strings.Contains(out, "component=store") || !strings.Contains(out, "records=3") {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestLogExpenseCreatedOmitsDescription(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentApp, Handler: slog.NewTextHandler(&buf, nil)})
	l.ExpenseCreated(context.Background(), core.Expense{
		ID:          "abc",
		Date:        core.NewDate(2024, 1, 1),
		Amount:      core.Rupiah(50000),
		Category:    core.Transport,
		Description: "ojek ke kantor",
	})

	out := buf.String()
	for _, want := range []string{"component=expense", "operation=create", "expense_id=abc", "amount=50000", "expense_date=2024-01-01", "category=Transportasi"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
	if strings.Contains(out, "ojek") {
		t.Fatalf("description leaked into log: %s", out)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("expected default logger, got %+v", l)
	}
}

func TestForKeepsAttributesAndSingleComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentHTTP, Handler: slog.NewTextHandler(&buf, nil)}).
		With(FieldRequestID, "req_1")
	l.For(ComponentSecurity).Warn("suspicious")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=security") {
		t.Fatalf("expected exactly one security component: %s", out)
	}
	if !strings.Contains(out, "request_id=req_1") {
		t.Fatalf("request id lost when switching component: %s", out)
	}
	if l.For(ComponentHTTP) != l {
		t.Fatalf("For with the same component should return the receiver")
	}
}

func TestHTTPEndLevelFollowsStatus(t *testing.T) {
	cases := map[int]string{200: "level=INFO", 404: "level=WARN", 503: "level=ERROR"}
	for status, want := range cases {
		var buf bytes.Buffer
		l := New(Config{Component: ComponentHTTP, Handler: slog.NewTextHandler(&buf, nil)})
		r := httptest.NewRequest(http.MethodGet, "/api/stats?category=Belanja", nil)
		l.HTTPEnd(context.Background(), r, status, 12*time.Millisecond, "10.0.0.1")

		out := buf.String()
		if !strings.Contains(out, want) || !strings.Contains(out, "duration_ms=12") || !strings.Contains(out, "status_code=") {
			t.Fatalf("status %d: unexpected log line: %s", status, out)
		}
	}
}

func TestFailureAppendsErrorAfterExtraFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentHTTP, Handler: slog.NewTextHandler(&buf, nil)})
	l.Failure(context.Background(), "save failed", errors.New("disk full"), ComponentStore, OpAppend,
		Fields{}.Expense(core.Expense{ID: "x1", Date: core.NewDate(2024, 2, 1), Amount: core.Rupiah(5), Category: core.Other}))

	out := buf.String()
	for _, want := range []string{"level=ERROR", "component=store", "expense_id=x1", `error="disk full"`, "operation=append"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
	if strings.Index(out, "expense_id") > strings.Index(out, "error=") {
		t.Fatalf("extra fields should precede the error: %s", out)
	}
}
