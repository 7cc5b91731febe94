package analytics

import "pengeluaran/internal/core"

// Summary gathers what the statistics view shows for one record set.
type Summary struct {
	Count                 int            `json:"count"`
	Total                 core.Money     `json:"total"`
	AveragePerTransaction core.Money     `json:"average_per_transaction"`
	AverageDaily          core.Money     `json:"average_daily"`
	AverageWeekly         core.Money     `json:"average_weekly"`
	Categories            []CategoryStat `json:"categories"`
	Daily                 []DailyTotal   `json:"daily"`
	Weekly                []WeeklyTotal  `json:"weekly"`
}

func Summarize(records []core.Expense) Summary {
	s := Summary{
		Count:      len(records),
		Total:      Total(records),
		Categories: CategoryStats(records),
		Daily:      DailyTotals(records),
		Weekly:     WeeklyTotals(records),
	}
	s.AveragePerTransaction, _ = AveragePerTransaction(records)
	s.AverageDaily, _ = meanDaily(s.Daily)
	s.AverageWeekly, _ = AverageWeekly(records)
	return s
}

// Empty reports whether the summary was built from no records.
func (s Summary) Empty() bool { return s.Count == 0 }
