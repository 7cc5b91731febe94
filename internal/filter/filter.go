// Package filter narrows an expense collection by date range and category
// and maps positions in the narrowed view back to the full collection.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"pengeluaran/internal/core"
)

// DefaultWindowDays is how far back the date filter starts when it is
// switched on without explicit bounds.
const DefaultWindowDays = 30

var (
	// ErrPositionOutOfRange is returned when a filtered position does not exist.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrInvalidCriteria reports filter input that cannot be parsed.
	ErrInvalidCriteria = errors.New("invalid filter")
)

// DateRange is inclusive on both ends.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// Criteria selects records. A nil Range leaves dates unfiltered; an empty
// Category or core.AllCategories leaves categories unfiltered.
type Criteria struct {
	Range    *DateRange
	Category core.Category
}

// LastDays returns the range from n days before today up to today.
func LastDays(today core.Date, n int) DateRange {
	if n < 0 {
		n = 0
	}
	return DateRange{Start: today.AddDays(-n), End: today}
}

// Contains reports whether d falls inside r.
func (r DateRange) Contains(d core.Date) bool {
	return d.Compare(r.Start) >= 0 && d.Compare(r.End) <= 0
}

func (c Criteria) IsZero() bool {
	return c.Range == nil && c.allCategories()
}

func (c Criteria) allCategories() bool {
	return c.Category == "" || c.Category == core.AllCategories
}

// Match reports whether e satisfies every active predicate.
func (c Criteria) Match(e core.Expense) bool {
	if c.Range != nil && !c.Range.Contains(e.Date) {
		return false
	}
	if !c.allCategories() && e.Category != c.Category {
		return false
	}
	return true
}

// Apply returns the matching records in their original order. The input is
// never modified; no match gives an empty, non-nil slice.
func Apply(records []core.Expense, c Criteria) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Indices returns the original positions of the matching records.
func Indices(records []core.Expense, c Criteria) []int {
	out := make([]int, 0, len(records))
	for i, e := range records {
		if c.Match(e) {
			out = append(out, i)
		}
	}
	return out
}

// ResolvePosition maps pos in the filtered view to the position of the same
// record in records.
func ResolvePosition(records []core.Expense, c Criteria, pos int) (int, error) {
	idx := Indices(records, c)
	if pos < 0 || pos >= len(idx) {
		return 0, fmt.Errorf("%w: %d of %d", ErrPositionOutOfRange, pos, len(idx))
	}
	return idx[pos], nil
}

// Parse builds criteria from user input. The date filter is on when dates is
// set or either bound is given; a missing start defaults to DefaultWindowDays
// before the end and a missing end to today. An empty category or the
// wildcard selects every category.
func Parse(from, to string, dates bool, category string, today core.Date) (Criteria, error) {
	var c Criteria

	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if dates || from != "" || to != "" {
		end := today
		if to != "" {
			d, err := core.ParseDate(to)
			if err != nil {
				return Criteria{}, fmt.Errorf("%w: to: %v", ErrInvalidCriteria, err)
			}
			end = d
		}
		r := LastDays(end, DefaultWindowDays)
		if from != "" {
			d, err := core.ParseDate(from)
			if err != nil {
				return Criteria{}, fmt.Errorf("%w: from: %v", ErrInvalidCriteria, err)
			}
			r.Start = d
		}
		c.Range = &r
	}

	if category = strings.TrimSpace(category); category != "" && !strings.EqualFold(category, string(core.AllCategories)) {
		parsed, err := core.ParseCategory(category)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: %v", ErrInvalidCriteria, err)
		}
		c.Category = parsed
	}
	return c, nil
}
