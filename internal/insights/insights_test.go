package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pengeluaran/internal/core"
)

func rec(day int, amount int64, c core.Category) core.Expense {
	return core.Expense{Date: core.NewDate(2024, 3, day), Amount: core.Rupiah(amount), Category: c, Description: "x"}
}

func rules(r Report) []Rule {
	out := []Rule{}
	for _, in := range r.Insights {
		out = append(out, in.Rule)
	}
	return out
}

func TestEvaluateEmpty(t *testing.T) {
	r := Evaluate(nil)
	assert.True(t, r.Empty())
	assert.Empty(t, r.Insights)
	assert.Nil(t, r.Period)
	assert.Nil(t, r.MonthlyBudget)
}

func TestConcentrationIsStrict(t *testing.T) {
	over := Evaluate([]core.Expense{
		rec(1, 450000, core.Shopping),
		rec(1, 300000, core.FoodAndDrink),
		rec(1, 250000, core.Transport),
	})
	assert.Contains(t, rules(over), RuleConcentration)
	assert.Equal(t, core.Shopping, over.TopCategory)
	assert.InDelta(t, 0.45, over.TopShare, 1e-9)
	assert.Contains(t, over.Insights[0].Message, "45.0%")

	exact := Evaluate([]core.Expense{
		rec(1, 400000, core.Shopping),
		rec(1, 300000, core.FoodAndDrink),
		rec(1, 300000, core.Transport),
	})
	assert.NotContains(t, rules(exact), RuleConcentration)
}

func TestTrendUp(t *testing.T) {
	r := Evaluate([]core.Expense{
		rec(4, 150, core.Other),
		rec(1, 100, core.Health),
	})
	require.NotNil(t, r.Period)
	assert.InDelta(t, 50.0, r.Period.ChangePercent, 1e-9)
	assert.Contains(t, rules(r), RuleTrendUp)
}

func TestTrendDown(t *testing.T) {
	r := Evaluate([]core.Expense{
		rec(1, 100, core.Other),
		rec(2, 100, core.Other),
		rec(3, 60, core.Other),
	})
	// first half [100], second half [100, 60]
	require.NotNil(t, r.Period)
	assert.InDelta(t, 60.0, r.Period.ChangePercent, 1e-9)

	r = Evaluate([]core.Expense{
		rec(1, 100, core.Other),
		rec(2, 70, core.Other),
	})
	assert.InDelta(t, -30.0, r.Period.ChangePercent, 1e-9)
	require.Contains(t, rules(r), RuleTrendDown)
	for _, in := range r.Insights {
		if in.Rule == RuleTrendDown {
			assert.Equal(t, LevelSuccess, in.Level)
			assert.Contains(t, in.Message, "30.0%")
		}
	}
}

func TestTrendBoundaryDoesNotFire(t *testing.T) {
	r := Evaluate([]core.Expense{rec(1, 100, core.Other), rec(2, 120, core.Other)})
	assert.InDelta(t, 20.0, r.Period.ChangePercent, 1e-9)
	assert.NotContains(t, rules(r), RuleTrendUp)
}

func TestTrendNeedsTwoRecords(t *testing.T) {
	r := Evaluate([]core.Expense{rec(1, 100, core.Other)})
	assert.Nil(t, r.Period)
	assert.NotContains(t, rules(r), RuleTrendUp)
}

func TestComparePeriodsIsStableForSameDay(t *testing.T) {
	p := ComparePeriods([]core.Expense{
		rec(2, 10, core.Other),
		rec(1, 30, core.Other),
		rec(2, 20, core.Other),
		rec(1, 40, core.Other),
	})
	// sorted: 30, 40 | 10, 20
	assert.True(t, p.FirstHalf.Equal(core.Rupiah(70)))
	assert.True(t, p.SecondHalf.Equal(core.Rupiah(30)))
}

func TestZeroFirstHalfGivesNoChange(t *testing.T) {
	p := ComparePeriods([]core.Expense{
		{Date: core.NewDate(2024, 1, 1), Category: core.Other},
		rec(2, 100, core.Other),
	})
	assert.Zero(t, p.ChangePercent)
}

func TestSpikeInsight(t *testing.T) {
	var records []core.Expense
	for d := 1; d <= 9; d++ {
		records = append(records, rec(d, 10, core.FoodAndDrink))
	}
	records = append(records, rec(10, 200, core.Health))

	r := Evaluate(records)
	require.Len(t, r.Spikes, 1)
	assert.Equal(t, "2024-03-10", r.Spikes[0].Date.String())
	assert.Contains(t, rules(r), RuleSpikes)
}

func TestSingleDayHasNoSpike(t *testing.T) {
	r := Evaluate([]core.Expense{rec(1, 500, core.Other)})
	assert.True(t, r.SpikeThreshold.Equal(core.Rupiah(1000)))
	assert.Empty(t, r.Spikes)
}

func TestBudgetEightDays(t *testing.T) {
	var records []core.Expense
	for d := 1; d <= 8; d++ {
		records = append(records, core.Expense{
			Date: core.NewDate(2024, 1, d), Amount: core.Rupiah(10000), Category: core.FoodAndDrink, Description: "x",
		})
	}
	r := Evaluate(records)
	require.NotNil(t, r.MonthlyBudget)
	assert.True(t, r.WeeklyAverage.Equal(core.Rupiah(40000)))
	assert.True(t, r.MonthlyBudget.Equal(core.Rupiah(160000)))
	assert.Contains(t, rules(r), RuleBudget)
}

func TestBudgetGroupsSameWeekAcrossYears(t *testing.T) {
	var records []core.Expense
	for _, d := range []core.Date{
		core.NewDate(2024, 1, 8), core.NewDate(2024, 1, 9), core.NewDate(2024, 1, 10), core.NewDate(2024, 1, 11),
		core.NewDate(2025, 1, 6), core.NewDate(2025, 1, 7), core.NewDate(2025, 1, 8), core.NewDate(2025, 1, 9),
	} {
		records = append(records, core.Expense{Date: d, Amount: core.Rupiah(10000), Category: core.Other, Description: "x"})
	}
	r := Evaluate(records)
	require.NotNil(t, r.MonthlyBudget)
	assert.True(t, r.WeeklyAverage.Equal(core.Rupiah(80000)))
	assert.True(t, r.MonthlyBudget.Equal(core.Rupiah(320000)))
}

func TestBudgetNeedsSevenRecords(t *testing.T) {
	var records []core.Expense
	for d := 1; d <= 6; d++ {
		records = append(records, rec(d, 10000, core.FoodAndDrink))
	}
	r := Evaluate(records)
	assert.Nil(t, r.MonthlyBudget)
	assert.NotContains(t, rules(r), RuleBudget)

	r = Evaluate(append(records, rec(7, 10000, core.FoodAndDrink)))
	assert.NotNil(t, r.MonthlyBudget)
}

func TestTopCategoriesCapped(t *testing.T) {
	var records []core.Expense
	for i, c := range core.Categories() {
		records = append(records, rec(1, int64(100*(i+1)), c))
	}
	r := Evaluate(records)
	require.Len(t, r.TopCategories, TopCategoriesShown)
	assert.Equal(t, core.Other, r.TopCategories[0].Category)
}
