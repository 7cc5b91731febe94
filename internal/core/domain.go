package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar format used for persisted and displayed dates.
const DateLayout = "2006-01-02"

// MaxDescriptionLength bounds free-text descriptions, counted in characters.
const MaxDescriptionLength = 200

type (
	// Date is a calendar day with no time component, kept at midnight UTC.
	Date struct {
		time.Time
	}

	Category string

	// Expense is one spending event. ID is a surrogate assigned by the store
	// and is not part of the persisted four-column table.
	Expense struct {
		ID          string
		Date        Date
		Amount      Money
		Category    Category
		Description string
	}
)

const (
	FoodAndDrink  Category = "Makanan & Minuman"
	Transport     Category = "Transportasi"
	Shopping      Category = "Belanja"
	Entertainment Category = "Hiburan"
	Health        Category = "Kesehatan"
	Education     Category = "Pendidikan"
	Bills         Category = "Tagihan & Utilitas"
	Other         Category = "Lainnya"

	// AllCategories is the filter wildcard. It is never stored on a record.
	AllCategories Category = "Semua Kategori"
)

var categories = []Category{
	FoodAndDrink,
	Transport,
	Shopping,
	Entertainment,
	Health,
	Education,
	Bills,
	Other,
}

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidCategory  = errors.New("invalid category")

	ErrDescriptionTooLong = errors.New("description too long")
)

// Categories returns the fixed category list in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// IsValid reports whether c is one of the storable categories.
func (c Category) IsValid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory matches s against the fixed list, ignoring surrounding
// whitespace and letter case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t, keeping its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate accepts YYYY-MM-DD, optionally followed by a time part which is
// ignored ("2024-01-01 00:00:00", "2024-01-01T08:30:00Z").
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		if sep := s[len(DateLayout)]; sep == ' ' || sep == 'T' {
			s = s[:len(DateLayout)]
		}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w (max %d characters)", ErrDescriptionTooLong, MaxDescriptionLength)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	return nil
}
