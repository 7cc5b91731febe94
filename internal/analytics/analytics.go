// Package analytics computes spending statistics over a set of expense
// records. Every function is pure and returns results in a deterministic
// order.
package analytics

import (
	"cmp"
	"math"
	"slices"

	"pengeluaran/internal/core"
)

type (
	DailyTotal struct {
		Date  core.Date  `json:"date"`
		Total core.Money `json:"total"`
	}

	CategoryTotal struct {
		Category core.Category `json:"category"`
		Total    core.Money    `json:"total"`
	}

	// CategoryStat is the per-category row of the statistics table.
	CategoryStat struct {
		Category core.Category `json:"category"`
		Total    core.Money    `json:"total"`
		Mean     core.Money    `json:"mean"`
		Count    int           `json:"count"`
	}

	// WeeklyTotal is keyed by ISO week number alone, so week 2 of two
	// different years is one group.
	WeeklyTotal struct {
		Week  int        `json:"week"`
		Total core.Money `json:"total"`
	}
)

// Total sums every amount. Empty input gives zero.
func Total(records []core.Expense) core.Money {
	var sum core.Money
	for _, e := range records {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// AveragePerTransaction is the mean amount. ok is false for empty input.
func AveragePerTransaction(records []core.Expense) (avg core.Money, ok bool) {
	if len(records) == 0 {
		return core.Money{}, false
	}
	return Total(records).DivInt(len(records)), true
}

// DailyTotals groups by calendar date, ascending.
func DailyTotals(records []core.Expense) []DailyTotal {
	byDay := map[string]int{}
	out := []DailyTotal{}
	for _, e := range records {
		key := e.Date.String()
		i, ok := byDay[key]
		if !ok {
			i = len(out)
			byDay[key] = i
			out = append(out, DailyTotal{Date: e.Date})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
	}
	slices.SortFunc(out, func(a, b DailyTotal) int { return a.Date.Compare(b.Date) })
	return out
}

// AverageDaily is the mean of the daily totals. Only days with at least one
// record count.
func AverageDaily(records []core.Expense) (core.Money, bool) {
	return meanDaily(DailyTotals(records))
}

func meanDaily(daily []DailyTotal) (core.Money, bool) {
	if len(daily) == 0 {
		return core.Money{}, false
	}
	var sum core.Money
	for _, d := range daily {
		sum = sum.Add(d.Total)
	}
	return sum.DivInt(len(daily)), true
}

// CategoryTotals sums per category, largest first. Equal totals are ordered
// by category name.
func CategoryTotals(records []core.Expense) []CategoryTotal {
	stats := CategoryStats(records)
	out := make([]CategoryTotal, len(stats))
	for i, s := range stats {
		out[i] = CategoryTotal{Category: s.Category, Total: s.Total}
	}
	return out
}

// TopCategories returns at most n entries of CategoryTotals.
func TopCategories(records []core.Expense, n int) []CategoryTotal {
	totals := CategoryTotals(records)
	if n < 0 {
		n = 0
	}
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// CategoryStats returns sum, mean and count per category in CategoryTotals
// order.
func CategoryStats(records []core.Expense) []CategoryStat {
	index := map[core.Category]int{}
	var out []CategoryStat
	for _, e := range records {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryStat{Category: e.Category})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
		out[i].Count++
	}
	for i := range out {
		out[i].Mean = out[i].Total.DivInt(out[i].Count)
	}
	slices.SortFunc(out, func(a, b CategoryStat) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if out == nil {
		out = []CategoryStat{}
	}
	return out
}

// WeeklyTotals sums amounts per ISO week number, ascending by week.
func WeeklyTotals(records []core.Expense) []WeeklyTotal {
	byWeek := map[int]core.Money{}
	for _, e := range records {
		_, w := e.Date.ISOWeek()
		byWeek[w] = byWeek[w].Add(e.Amount)
	}
	out := make([]WeeklyTotal, 0, len(byWeek))
	for w, total := range byWeek {
		out = append(out, WeeklyTotal{Week: w, Total: total})
	}
	slices.SortFunc(out, func(a, b WeeklyTotal) int { return cmp.Compare(a.Week, b.Week) })
	return out
}

// AverageWeekly is the mean of the weekly totals.
func AverageWeekly(records []core.Expense) (core.Money, bool) {
	weekly := WeeklyTotals(records)
	if len(weekly) == 0 {
		return core.Money{}, false
	}
	var sum core.Money
	for _, w := range weekly {
		sum = sum.Add(w.Total)
	}
	return sum.DivInt(len(weekly)), true
}

// SpikeThreshold is mean + 2·s over the daily totals, where s is the sample
// standard deviation. When s is zero, including the single-day case, the
// threshold is twice the mean. ok is false for empty input.
func SpikeThreshold(daily []DailyTotal) (core.Money, bool) {
	mean, ok := meanDaily(daily)
	if !ok {
		return core.Money{}, false
	}
	s := sampleStdDev(daily, mean.Float64())
	if s > 0 {
		return mean.Add(core.MoneyFromFloat(2 * s)), true
	}
	return mean.MulInt(2), true
}

func sampleStdDev(daily []DailyTotal, mean float64) float64 {
	if len(daily) < 2 {
		return 0
	}
	var ss float64
	for _, d := range daily {
		diff := d.Total.Float64() - mean
		ss += diff * diff
	}
	s := math.Sqrt(ss / float64(len(daily)-1))
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// Spikes returns the days strictly above threshold, in date order.
func Spikes(daily []DailyTotal, threshold core.Money) []DailyTotal {
	out := []DailyTotal{}
	for _, d := range daily {
		if d.Total.GreaterThan(threshold) {
			out = append(out, d)
		}
	}
	return out
}
