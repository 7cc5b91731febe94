package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	applog "pengeluaran/internal/log"
	"pengeluaran/internal/services"
	appweb "pengeluaran/web"
)

// ExpenseService is what the handlers need from the service layer.
type ExpenseService interface {
	Snapshot(ctx context.Context, c filter.Criteria) (services.Snapshot, error)
	Add(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteByID(ctx context.Context, id string) (core.Expense, error)
	DeleteFiltered(ctx context.Context, c filter.Criteria, pos int) (core.Expense, error)
	Ready(ctx context.Context) error
}

// Options tunes a Server. Zero values select the defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *applog.Logger
	Today              func() core.Date
}

type appMetrics struct {
	started         time.Time
	requests        int64
	expensesCreated int64
	expensesDeleted int64
}

// Server serves the expense page, its HTMX partials and the JSON API.
type Server struct {
	http.Server

	templates   *template.Template
	expenses    ExpenseService
	rateLimiter *rateLimiter
	security    securityMetrics
	metrics     appMetrics
	logger      *applog.Logger
	today       func() core.Date

	shutdownOnce sync.Once
}

var templateFuncs = template.FuncMap{
	"rp": func(m core.Money) string { return m.Format() },
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc ExpenseService, opts Options) *Server {
	mux := http.NewServeMux()

	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP, Handler: slog.Default().Handler()})
	}
	today := opts.Today
	if today == nil {
		today = core.Today
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		expenses:    svc,
		rateLimiter: newRateLimiter(opts.RateLimitPerMinute),
		metrics:     appMetrics{started: time.Now()},
		logger:      logger,
		today:       today,
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("/expenses/delete", s.withSecurityHeaders(s.handleDeleteExpense))
	mux.HandleFunc("/export.csv", s.withSecurityHeaders(s.handleExportCSV))

	// UI partials
	mux.HandleFunc("/ui/expenses", s.withSecurityHeaders(s.handleExpensesPartial))
	mux.HandleFunc("/ui/stats", s.withSecurityHeaders(s.handleStatsPartial))
	mux.HandleFunc("/ui/insights", s.withSecurityHeaders(s.handleInsightsPartial))

	// JSON API
	mux.HandleFunc("/api/expenses", s.withSecurityHeaders(s.handleAPIExpenses))
	mux.HandleFunc("/api/stats", s.withSecurityHeaders(s.handleAPIStats))
	mux.HandleFunc("/api/insights", s.withSecurityHeaders(s.handleAPIInsights))

	return s
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&s.metrics.requests, 1)

		clientIP := extractClientIP(r)
		requestID := generateRequestID()
		reqLogger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.WithLogger(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.HTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r) {
			atomic.AddInt64(&s.security.suspiciousRequests, 1)
			reqLogger.For(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
		}

		if r.Method == http.MethodPost {
			if ok, wait := s.rateLimiter.allow(clientIP); !ok {
				atomic.AddInt64(&s.security.rateLimitHits, 1)
				reqLogger.For(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
					applog.FieldClientIP, clientIP, "retry_in", wait)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				http.Error(w, "Terlalu banyak permintaan, coba lagi nanti.", http.StatusTooManyRequests)
				reqLogger.HTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start), clientIP)
				return
			}
		}

		setSecurityHeaders(w.Header())
		w.Header().Set("X-Request-ID", requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		reqLogger.HTTPEnd(ctx, r, rw.statusCode, time.Since(start), clientIP)
	}
}

// log returns the request-scoped logger installed by withSecurityHeaders.
func (s *Server) log(r *http.Request) *applog.Logger {
	return applog.FromContext(r.Context())
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// criteria parses the filter of r, writing a 400 when it is unusable.
func (s *Server) criteria(w http.ResponseWriter, r *http.Request) (filter.Criteria, bool) {
	c, err := ParseCriteria(r.URL.Query(), s.today())
	if err != nil {
		BadRequestError(userMessage(err)).Write(w)
		return filter.Criteria{}, false
	}
	return c, true
}

// snapshot loads the filtered view, writing a 500 when the store fails.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request, c filter.Criteria, asJSON bool) (services.Snapshot, bool) {
	snap, err := s.expenses.Snapshot(r.Context(), c)
	if err != nil {
		s.log(r).Failure(r.Context(), "Failed to load expenses", err, applog.ComponentStore, applog.OpRead, nil)
		if asJSON {
			JSONError(http.StatusInternalServerError, userMessage(err)).Write(w)
		} else {
			InternalServerError(userMessage(err)).Write(w)
		}
		return services.Snapshot{}, false
	}
	return snap, true
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
