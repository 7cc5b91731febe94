package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"100000", "100000", true},
		{"100000.0", "100000", true},
		{"1,25", "1.25", true},
		{".5", "0.5", true},
		{" 2500 ", "2500", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e5", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseStoredAmountAllowsZero(t *testing.T) {
	m, err := ParseStoredAmount("0")
	if err != nil || !m.IsZero() {
		t.Fatalf("expected zero, got %s (err=%v)", m, err)
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		m    Money
		want string
	}{
		{Rupiah(0), "Rp 0"},
		{Rupiah(950), "Rp 950"},
		{Rupiah(150000), "Rp 150.000"},
		{Rupiah(1234567), "Rp 1.234.567"},
		{MoneyFromFloat(74999.6), "Rp 75.000"},
	}
	for _, tc := range cases {
		if got := tc.m.Format(); got != tc.want {
			t.Fatalf("Format(%s) = %q, want %q", tc.m, got, tc.want)
		}
	}
}

func TestMoneyArithmeticGuards(t *testing.T) {
	if got := Rupiah(100).DivInt(0); !got.IsZero() {
		t.Fatalf("DivInt(0) = %s, want 0", got)
	}
	if got := Rupiah(100).Ratio(Money{}); got != 0 {
		t.Fatalf("Ratio(0) = %v, want 0", got)
	}
	if got := Rupiah(150000).DivInt(2); !got.Equal(Rupiah(75000)) {
		t.Fatalf("DivInt(2) = %s", got)
	}
	if got := Rupiah(45).Ratio(Rupiah(100)); got != 0.45 {
		t.Fatalf("Ratio = %v", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct{ A Money }{Rupiah(1500)})
	if err != nil || string(b) != `{"A":1500}` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	var out struct{ A Money }
	if err := json.Unmarshal([]byte(`{"A":"12.5"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.A.String() != "12.5" {
		t.Fatalf("unexpected amount %s", out.A)
	}
}
