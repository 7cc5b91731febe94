// Package insights turns a record set into spending advice. The rules and
// their thresholds are fixed.
package insights

import (
	"fmt"
	"math"
	"slices"

	"pengeluaran/internal/analytics"
	"pengeluaran/internal/core"
)

const (
	// ConcentrationThreshold is the share of the total above which the top
	// category is flagged.
	ConcentrationThreshold = 0.4

	// TrendThresholdPercent bounds the change between the two halves of the
	// period, in both directions.
	TrendThresholdPercent = 20.0

	// BudgetMinRecords is the record count from which a budget is suggested.
	BudgetMinRecords = 7

	WeeksPerMonth = 4

	// TopCategoriesShown sizes the top categories list of a report.
	TopCategoriesShown = 5
)

type Level string

const (
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

type Rule string

const (
	RuleConcentration Rule = "concentration"
	RuleTrendUp       Rule = "trend_up"
	RuleTrendDown     Rule = "trend_down"
	RuleSpikes        Rule = "spikes"
	RuleBudget        Rule = "budget"
)

// Insight is one piece of advice.
type Insight struct {
	Rule    Rule   `json:"rule"`
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// PeriodComparison splits the date-sorted records in two halves. The first
// half holds n/2 records.
type PeriodComparison struct {
	FirstHalf     core.Money `json:"first_half"`
	SecondHalf    core.Money `json:"second_half"`
	ChangePercent float64    `json:"change_percent"`
}

// Report holds the advice plus the figures it was derived from.
type Report struct {
	Count          int                       `json:"count"`
	Total          core.Money                `json:"total"`
	TopCategory    core.Category             `json:"top_category,omitempty"`
	TopAmount      core.Money                `json:"top_amount"`
	TopShare       float64                   `json:"top_share"`
	TopCategories  []analytics.CategoryTotal `json:"top_categories"`
	Period         *PeriodComparison         `json:"period,omitempty"`
	SpikeThreshold core.Money                `json:"spike_threshold"`
	Spikes         []analytics.DailyTotal    `json:"spikes"`
	WeeklyAverage  core.Money                `json:"weekly_average"`
	MonthlyBudget  *core.Money               `json:"monthly_budget,omitempty"`
	Insights       []Insight                 `json:"insights"`
}

// Empty reports whether the report was built from no records.
func (r Report) Empty() bool { return r.Count == 0 }

// Evaluate runs every rule over records. Rules are independent; an empty
// input gives an empty report.
func Evaluate(records []core.Expense) Report {
	r := Report{
		Count:         len(records),
		TopCategories: []analytics.CategoryTotal{},
		Spikes:        []analytics.DailyTotal{},
		Insights:      []Insight{},
	}
	if len(records) == 0 {
		return r
	}

	r.Total = analytics.Total(records)
	totals := analytics.CategoryTotals(records)
	if len(totals) > 0 {
		r.TopCategory = totals[0].Category
		r.TopAmount = totals[0].Total
		r.TopShare = r.TopAmount.Ratio(r.Total)
	}
	r.TopCategories = analytics.TopCategories(records, TopCategoriesShown)
	if in, ok := concentration(r); ok {
		r.Insights = append(r.Insights, in)
	}

	if len(records) >= 2 {
		p := ComparePeriods(records)
		r.Period = &p
		if in, ok := trend(p); ok {
			r.Insights = append(r.Insights, in)
		}
	}

	daily := analytics.DailyTotals(records)
	if th, ok := analytics.SpikeThreshold(daily); ok {
		r.SpikeThreshold = th
		r.Spikes = analytics.Spikes(daily, th)
	}
	if in, ok := spikes(r.Spikes); ok {
		r.Insights = append(r.Insights, in)
	}

	r.WeeklyAverage, _ = analytics.AverageWeekly(records)
	if len(records) >= BudgetMinRecords {
		budget := r.WeeklyAverage.MulInt(WeeksPerMonth)
		r.MonthlyBudget = &budget
		r.Insights = append(r.Insights, Insight{
			Rule:  RuleBudget,
			Level: LevelInfo,
			Title: "Saran Budget Bulanan",
			Message: fmt.Sprintf("Berdasarkan rata-rata pengeluaran mingguan (%s), disarankan budget bulanan sekitar %s.",
				r.WeeklyAverage.Format(), budget.Format()),
		})
	}
	return r
}

// ComparePeriods sorts a copy of records by date, keeping the input order
// for equal dates, and compares the totals of both halves. The change is 0
// when the first half sums to zero.
func ComparePeriods(records []core.Expense) PeriodComparison {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b core.Expense) int { return a.Date.Compare(b.Date) })

	mid := len(sorted) / 2
	p := PeriodComparison{
		FirstHalf:  analytics.Total(sorted[:mid]),
		SecondHalf: analytics.Total(sorted[mid:]),
	}
	if p.FirstHalf.IsPositive() {
		p.ChangePercent = p.SecondHalf.Sub(p.FirstHalf).MulInt(100).Ratio(p.FirstHalf)
	}
	return p
}

func concentration(r Report) (Insight, bool) {
	if r.TopShare <= ConcentrationThreshold {
		return Insight{}, false
	}
	return Insight{
		Rule:  RuleConcentration,
		Level: LevelWarning,
		Title: "Perhatian",
		Message: fmt.Sprintf("Pengeluaran untuk kategori '%s' mencapai %.1f%% dari total pengeluaran. Pertimbangkan untuk mengurangi pengeluaran di kategori ini.",
			r.TopCategory, r.TopShare*100),
	}, true
}

func trend(p PeriodComparison) (Insight, bool) {
	switch {
	case p.ChangePercent > TrendThresholdPercent:
		return Insight{
			Rule:  RuleTrendUp,
			Level: LevelWarning,
			Title: "Perhatian",
			Message: fmt.Sprintf("Pengeluaran meningkat %.1f%% dibanding periode sebelumnya, lebih dari %.0f%%. Pertimbangkan untuk mengontrol pengeluaran.",
				p.ChangePercent, TrendThresholdPercent),
		}, true
	case p.ChangePercent < -TrendThresholdPercent:
		return Insight{
			Rule:  RuleTrendDown,
			Level: LevelSuccess,
			Title: "Peningkatan",
			Message: fmt.Sprintf("Pengeluaran menurun %.1f%% dibanding periode sebelumnya. Pertimbangkan untuk mempertahankan pola ini.",
				math.Abs(p.ChangePercent)),
		}, true
	}
	return Insight{}, false
}

func spikes(days []analytics.DailyTotal) (Insight, bool) {
	if len(days) == 0 {
		return Insight{}, false
	}
	peak := days[0].Total
	for _, d := range days[1:] {
		if d.Total.GreaterThan(peak) {
			peak = d.Total
		}
	}
	return Insight{
		Rule:  RuleSpikes,
		Level: LevelWarning,
		Title: "Deteksi",
		Message: fmt.Sprintf("Terdapat %d hari dengan pengeluaran yang tidak biasa (tertinggi %s). Periksa pengeluaran pada hari-hari tersebut.",
			len(days), peak.Format()),
	}, true
}
