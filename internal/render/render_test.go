package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pengeluaran/internal/analytics"
	"pengeluaran/internal/core"
	"pengeluaran/internal/insights"
)

func sample() []core.Expense {
	return []core.Expense{
		{Date: core.NewDate(2024, 1, 1), Amount: core.Rupiah(100000), Category: core.FoodAndDrink, Description: "makan | siang"},
		{Date: core.NewDate(2024, 1, 2), Amount: core.Rupiah(50000), Category: core.Transport, Description: "bus"},
	}
}

func TestSummaryMarkdown(t *testing.T) {
	out, err := SummaryMarkdown(analytics.Summarize(sample()))
	require.NoError(t, err)

	assert.Contains(t, out, "| Rp 150.000 | Rp 75.000 | 2 | Rp 75.000 |")
	assert.Contains(t, out, "| Makanan & Minuman | Rp 100.000 | Rp 100.000 | 1 |")
	assert.Contains(t, out, "| 2024-01-02 | Rp 50.000 |")
}

func TestSummaryMarkdownEmpty(t *testing.T) {
	out, err := SummaryMarkdown(analytics.Summarize(nil))
	require.NoError(t, err)
	assert.Contains(t, out, "Belum ada data pengeluaran")
	assert.NotContains(t, out, "Ringkasan per Kategori")
}

func TestInsightsMarkdown(t *testing.T) {
	out, err := InsightsMarkdown(insights.Evaluate(sample()))
	require.NoError(t, err)

	assert.Contains(t, out, "**Kategori Terbesar:** Makanan & Minuman")
	assert.Contains(t, out, "Persentase: 66.7%")
	assert.Contains(t, out, "Perubahan: -50.0%")
	assert.Contains(t, out, "**Perhatian:**")
	assert.Contains(t, out, "**Peningkatan:**")
	assert.Contains(t, out, "| 1 | Makanan & Minuman | Rp 100.000 |")
	assert.Contains(t, out, "Tidak ada pengeluaran yang tidak biasa terdeteksi.")
}

func TestExpensesMarkdownEscapesCells(t *testing.T) {
	out, err := ExpensesMarkdown(sample())
	require.NoError(t, err)
	assert.Contains(t, out, `| 0 | 2024-01-01 | Makanan & Minuman | makan \| siang | Rp 100.000 |`)

	out, err = ExpensesMarkdown(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Tidak ada pengeluaran")
}

func TestHTML(t *testing.T) {
	records := append(sample(), core.Expense{
		Date: core.NewDate(2024, 1, 3), Amount: core.Rupiah(1), Category: core.Other, Description: "<script>alert(1)</script>",
	})
	markdown, err := ExpensesMarkdown(records)
	require.NoError(t, err)

	html, err := HTML(markdown)
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "makan | siang")
	assert.NotContains(t, html, "<script>")
}

func TestTerminal(t *testing.T) {
	markdown, err := SummaryMarkdown(analytics.Summarize(sample()))
	require.NoError(t, err)

	out, err := Terminal(markdown, 100)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "150.000"), out)
}
