// Package core provides money parsing and handling utilities.
//
// Amounts are exact decimals in Indonesian Rupiah. Arithmetic stays in
// decimal; float64 is only produced for statistics that need it.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyCode is the ISO code of every amount handled by the tracker.
const CurrencyCode = "IDR"

// rupiah renders whole rupiah with dot thousands, e.g. "Rp 150.000".
var rupiah = money.NewFormatter(0, ",", ".", "Rp", "$ 1")

// Money is a monetary quantity in rupiah.
type Money struct {
	value decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(v decimal.Decimal) Money { return Money{value: v} }

// Rupiah builds an amount from whole rupiah.
func Rupiah(v int64) Money { return Money{value: decimal.NewFromInt(v)} }

// MoneyFromFloat converts a float, e.g. the mean of a float series.
func MoneyFromFloat(v float64) Money { return Money{value: decimal.NewFromFloat(v)} }

// ParseAmount converts a plain decimal string into Money.
//
// It accepts both dot (12.5) and comma (12,5) decimal separators. Signs,
// thousands separators and exponents are rejected. The result is always
// strictly positive.
//
// Examples:
//
//	ParseAmount("100000")   -> 100000, nil
//	ParseAmount("100000.0") -> 100000, nil
//	ParseAmount("12,5")     -> 12.5, nil
//	ParseAmount("0")        -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	m, err := parsePlainDecimal(s)
	if err != nil {
		return Money{}, err
	}
	if !m.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

// ParseStoredAmount reads an amount as persisted in the table. Unlike
// ParseAmount it does not require a positive value.
func ParseStoredAmount(s string) (Money, error) {
	return parsePlainDecimal(s)
}

func parsePlainDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	v, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{value: v}, nil
}

func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int          { return m.value.Cmp(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money        { return Money{value: m.value.Sub(n.value)} }
func (m Money) MulInt(n int64) Money     { return Money{value: m.value.Mul(decimal.NewFromInt(n))} }
func (m Money) Float64() float64         { return m.value.InexactFloat64() }

// DivInt splits the amount in n parts. Dividing by zero yields zero.
func (m Money) DivInt(n int) Money {
	if n == 0 {
		return Money{}
	}
	return Money{value: m.value.Div(decimal.NewFromInt(int64(n)))}
}

// Ratio returns m/total, or 0 when total is zero.
func (m Money) Ratio(total Money) float64 {
	if total.IsZero() {
		return 0
	}
	return m.value.Div(total.value).InexactFloat64()
}

// String returns the plain decimal representation used in the persisted
// table ("100000", "12.5").
func (m Money) String() string {
	return m.value.String()
}

// Format renders the amount for people, rounded to whole rupiah.
func (m Money) Format() string {
	return rupiah.Format(m.value.Round(0).IntPart())
}

// MarshalJSON emits a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	v, err := decimal.NewFromString(strings.Trim(string(b), `"`))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, b)
	}
	m.value = v
	return nil
}
