package http

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	applog "pengeluaran/internal/log"
	"pengeluaran/internal/render"
	"pengeluaran/internal/services"
	"pengeluaran/internal/store/csvfile"
)

// expenseJSON is the API shape of a record. Position is the index in the
// returned (filtered) list.
type expenseJSON struct {
	ID          string        `json:"id"`
	Position    int           `json:"position"`
	Date        core.Date     `json:"date"`
	Amount      core.Money    `json:"amount"`
	Category    core.Category `json:"category"`
	Description string        `json:"description"`
}

func toJSON(pos int, e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Position:    pos,
		Date:        e.Date,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
	}
}

// writeError answers with HTML for the page and JSON for API clients.
func writeError(w http.ResponseWriter, asJSON bool, err error) {
	status, msg := statusFor(err), userMessage(err)
	if asJSON {
		JSONError(status, msg).Write(w)
		return
	}
	ErrorResponse(status, msg).TriggerErrorNotification(msg).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Format permintaan tidak valid").Write(w)
		return
	}
	asJSON := p.IsJSON()

	exp, err := ParseExpense(p, s.today())
	if err == nil {
		err = exp.Validate()
	}
	if err != nil {
		s.log(r).For(applog.ComponentExpense).WarnContext(r.Context(), "Rejected expense",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldError, err)
		writeError(w, asJSON, err)
		return
	}

	created, err := s.expenses.Add(r.Context(), exp)
	if err != nil {
		s.log(r).Failure(r.Context(), "Failed to save expense", err, applog.ComponentExpense, applog.OpCreate,
			applog.Fields{}.Expense(exp))
		writeError(w, asJSON, err)
		return
	}
	atomic.AddInt64(&s.metrics.expensesCreated, 1)
	s.log(r).ExpenseCreated(r.Context(), created)

	if asJSON {
		NewHTMXResponse().Status(http.StatusCreated).BodyJSON(toJSON(-1, created)).Write(w)
		return
	}

	msg := fmt.Sprintf("Pengeluaran tersimpan: %s %s (%s)", created.Description, created.Amount.Format(), created.Category)
	NewHTMXResponse().
		TriggerExpenseCreated(created.ID).
		TriggerFormReset().
		TriggerReportsRefresh().
		TriggerSuccessNotification(msg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// handleDeleteExpense deletes by id, or by position in the view selected by
// the from, to and category fields of the body.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost, http.MethodDelete); resp != nil {
		resp.Write(w)
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Format permintaan tidak valid").Write(w)
		return
	}
	asJSON := p.IsJSON()

	var (
		deleted core.Expense
		err     error
	)
	switch id, pos := p.Get("id"), p.Get("position"); {
	case id != "":
		deleted, err = s.expenses.DeleteByID(r.Context(), id)
	case pos != "":
		n, convErr := strconv.Atoi(pos)
		if convErr != nil {
			writeError(w, asJSON, fmt.Errorf("%w: position %q", filter.ErrInvalidCriteria, pos))
			return
		}
		c, critErr := ParseCriteria(p.Values(), s.today())
		if critErr != nil {
			writeError(w, asJSON, critErr)
			return
		}
		deleted, err = s.expenses.DeleteFiltered(r.Context(), c, n)
	default:
		if asJSON {
			JSONError(http.StatusBadRequest, "id atau position wajib diisi").Write(w)
		} else {
			BadRequestError("ID pengeluaran tidak ada").Write(w)
		}
		return
	}
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.log(r).Failure(r.Context(), "Failed to delete expense", err, applog.ComponentExpense, applog.OpDelete, nil)
		}
		writeError(w, asJSON, err)
		return
	}
	atomic.AddInt64(&s.metrics.expensesDeleted, 1)
	s.log(r).ExpenseDeleted(r.Context(), deleted)

	if asJSON {
		NewHTMXResponse().BodyJSON(toJSON(-1, deleted)).Write(w)
		return
	}
	NewHTMXResponse().
		TriggerExpenseDeleted(deleted.ID).
		TriggerReportsRefresh().
		TriggerSuccessNotification("Pengeluaran dihapus").
		Write(w)
}

type expenseRow struct {
	Position int
	Expense  core.Expense
}

type expensesData struct {
	Rows    []expenseRow
	Total   core.Money
	Query   template.URL
	LoadErr string
}

func (s *Server) handleExpensesPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	c, ok := s.criteria(w, r)
	if !ok {
		return
	}
	snap, ok := s.snapshot(w, r, c, false)
	if !ok {
		return
	}

	data := expensesData{Query: template.URL(CriteriaValues(c).Encode())}
	if snap.LoadErr != nil {
		data.LoadErr = userMessage(snap.LoadErr)
	}
	for i, e := range snap.Records {
		data.Rows = append(data.Rows, expenseRow{Position: i, Expense: e})
		data.Total = data.Total.Add(e.Amount)
	}

	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var b strings.Builder
	if err := s.templates.ExecuteTemplate(&b, "expenses.html", data); err != nil {
		s.log(r).Failure(r.Context(), "Expenses template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		InternalServerError("template error").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(b.String()).Write(w)
}

func (s *Server) handleStatsPartial(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, r, func(snap services.Snapshot) (string, error) {
		return render.SummaryMarkdown(snap.Summary())
	})
}

func (s *Server) handleInsightsPartial(w http.ResponseWriter, r *http.Request) {
	s.renderReport(w, r, func(snap services.Snapshot) (string, error) {
		return render.InsightsMarkdown(snap.Report())
	})
}

// renderReport loads the filtered view and writes the markdown produced by
// build as an HTML fragment.
func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, build func(services.Snapshot) (string, error)) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	c, ok := s.criteria(w, r)
	if !ok {
		return
	}
	snap, ok := s.snapshot(w, r, c, false)
	if !ok {
		return
	}

	markdown, err := build(snap)
	if err == nil {
		markdown, err = render.HTML(markdown)
	}
	if err != nil {
		s.log(r).Failure(r.Context(), "Report rendering failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		InternalServerError("Gagal menampilkan laporan").Write(w)
		return
	}

	var b strings.Builder
	if snap.LoadErr != nil {
		b.WriteString(`<div class="error">` + template.HTMLEscapeString(userMessage(snap.LoadErr)) + `</div>`)
	}
	b.WriteString(`<div class="report">` + markdown + `</div>`)
	NewHTMXResponse().BodyHTML(b.String()).Write(w)
}

func (s *Server) handleAPIExpenses(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	c, err := ParseCriteria(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, true, err)
		return
	}
	snap, ok := s.snapshot(w, r, c, true)
	if !ok {
		return
	}

	out := make([]expenseJSON, len(snap.Records))
	for i, e := range snap.Records {
		out[i] = toJSON(i, e)
	}
	body := map[string]any{"expenses": out, "count": len(out)}
	if snap.LoadErr != nil {
		body["warning"] = userMessage(snap.LoadErr)
	}
	NewHTMXResponse().BodyJSON(body).Write(w)
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	s.writeAPIReport(w, r, func(snap services.Snapshot) any { return snap.Summary() })
}

func (s *Server) handleAPIInsights(w http.ResponseWriter, r *http.Request) {
	s.writeAPIReport(w, r, func(snap services.Snapshot) any { return snap.Report() })
}

func (s *Server) writeAPIReport(w http.ResponseWriter, r *http.Request, build func(services.Snapshot) any) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	c, err := ParseCriteria(r.URL.Query(), s.today())
	if err != nil {
		writeError(w, true, err)
		return
	}
	snap, ok := s.snapshot(w, r, c, true)
	if !ok {
		return
	}
	NewHTMXResponse().BodyJSON(build(snap)).Write(w)
}

// handleExportCSV downloads the filtered records in the persisted CSV layout.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	c, ok := s.criteria(w, r)
	if !ok {
		return
	}
	snap, ok := s.snapshot(w, r, c, false)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="pengeluaran.csv"`)
	if err := csvfile.Encode(w, snap.Records); err != nil {
		s.log(r).Failure(r.Context(), "CSV export failed", err, applog.ComponentHTTP, applog.OpList, nil)
	}
}
