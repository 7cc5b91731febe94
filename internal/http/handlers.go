package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"pengeluaran/internal/cache"
	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	applog "pengeluaran/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates and that the store can be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.expenses.Ready(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}

	NewHTMXResponse().Status(httpStatus).BodyJSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security counters in a
// Prometheus-like text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	counters := []metric{
		{"http_requests_total", "Total number of HTTP requests", "counter", atomic.LoadInt64(&s.metrics.requests)},
		{"expenses_created_total", "Expenses created through the server", "counter", atomic.LoadInt64(&s.metrics.expensesCreated)},
		{"expenses_deleted_total", "Expenses deleted through the server", "counter", atomic.LoadInt64(&s.metrics.expensesDeleted)},
		{"rate_limit_hits_total", "Total rate limit hits", "counter", atomic.LoadInt64(&s.security.rateLimitHits)},
		{"suspicious_requests_total", "Total suspicious requests detected", "counter", atomic.LoadInt64(&s.security.suspiciousRequests)},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", int64(s.rateLimiter.ActiveClients())},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.metrics.started).Seconds())},
	}
	if src, ok := s.expenses.(interface {
		CacheStats() (cache.Stats, bool)
	}); ok {
		if cs, ok := src.CacheStats(); ok {
			counters = append(counters,
				metric{"store_cache_hits_total", "Expense loads served from the cache", "counter", int64(cs.Hits)},
				metric{"store_cache_misses_total", "Expense loads that read the backend", "counter", int64(cs.Misses)},
			)
		}
	}
	for _, c := range counters {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", c.name, c.help, c.name, c.kind, c.name, c.value)
	}
}

type metric struct {
	name, help, kind string
	value            int64
}

type indexData struct {
	Today         string
	DefaultFrom   string
	Categories    []core.Category
	AllCategories core.Category
	From          string
	To            string
	Category      core.Category
	Query         template.URL
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Halaman tidak ditemukan").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		s.log(r).For(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}

	c, ok := s.criteria(w, r)
	if !ok {
		return
	}

	today := s.today()
	data := indexData{
		Today:         today.String(),
		DefaultFrom:   filter.LastDays(today, filter.DefaultWindowDays).Start.String(),
		Categories:    core.Categories(),
		AllCategories: core.AllCategories,
		Category:      c.Category,
		Query:         template.URL(CriteriaValues(c).Encode()),
	}
	if c.Range != nil {
		data.From = c.Range.Start.String()
		data.To = c.Range.End.String()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.log(r).Failure(r.Context(), "Index template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
