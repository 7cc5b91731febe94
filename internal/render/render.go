// Package render turns statistics and insight reports into markdown, and
// markdown into HTML or styled terminal output.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"pengeluaran/internal/analytics"
	"pengeluaran/internal/core"
	"pengeluaran/internal/insights"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"rp":     func(m core.Money) string { return m.Format() },
	"pct":    func(share float64) string { return fmt.Sprintf("%.1f%%", share*100) },
	"signed": func(p float64) string { return fmt.Sprintf("%+.1f%%", p) },
	"inc":    func(i int) int { return i + 1 },
	"cell":   cell,
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// cell makes a value safe inside a markdown table row.
func cell(v any) string {
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// SummaryMarkdown renders the statistics view.
func SummaryMarkdown(s analytics.Summary) (string, error) {
	return renderTemplate("summary", "summary.md", map[string]string{
		"categories": "summary_categories.md",
		"daily":      "summary_daily.md",
	}, s)
}

// InsightsMarkdown renders an insight report with the figures behind it.
func InsightsMarkdown(r insights.Report) (string, error) {
	return renderTemplate("insights", "insights.md", map[string]string{
		"top":    "insights_top.md",
		"spikes": "insights_spikes.md",
	}, r)
}

// ExpensesMarkdown renders records as a table. The first column is the
// position in the given slice.
func ExpensesMarkdown(records []core.Expense) (string, error) {
	return renderTemplate("expenses", "expenses.md", nil, records)
}

func renderTemplate(name, mainFile string, partials map[string]string, data any) (string, error) {
	main, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return "", fmt.Errorf("read template %q: %w", mainFile, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(main))
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", mainFile, err)
	}
	for alias, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return "", fmt.Errorf("read partial %q: %w", file, err)
		}
		if _, err := tmpl.New(alias).Parse(string(content)); err != nil {
			return "", fmt.Errorf("parse partial %q for %q: %w", file, alias, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return b.String(), nil
}

// HTML converts markdown to an HTML fragment. Raw HTML in the input is
// dropped by the renderer.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Terminal styles markdown for a terminal of the given width. A width of 0
// disables wrapping.
func Terminal(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
