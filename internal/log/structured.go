package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"pengeluaran/internal/core"
)

type ContextKey string

// LoggerContextKey holds the request-scoped *Logger.
const LoggerContextKey ContextKey = "logger"

// FromContext returns the request logger, or one over slog.Default bound
// to the "unknown" component.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return bind(slog.Default(), "unknown")
}

// WithLogger stores l in ctx for FromContext.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, l)
}

func (l *Logger) HTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	f := Fields{}.Request(r, true).ClientIP(clientIP)
	l.For(ComponentHTTP).InfoContext(ctx, "HTTP request started", f.Args()...)
}

// HTTPEnd logs the outcome at info, warn for 4xx or error for 5xx.
func (l *Logger) HTTPEnd(ctx context.Context, r *http.Request, status int, elapsed time.Duration, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	f := Fields{}.Request(r, false).Response(status, elapsed).ClientIP(clientIP)
	l.For(ComponentHTTP).Log(ctx, level, "HTTP request completed", f.Args()...)
}

func (l *Logger) ExpenseCreated(ctx context.Context, e core.Expense) {
	l.For(ComponentExpense).InfoContext(ctx, "Expense created", Fields{}.Expense(e).Op(OpCreate).Args()...)
}

func (l *Logger) ExpenseDeleted(ctx context.Context, e core.Expense) {
	l.For(ComponentExpense).InfoContext(ctx, "Expense deleted", Fields{}.Expense(e).Op(OpDelete).Args()...)
}

// Failure logs err at error level under component, after any extra fields.
func (l *Logger) Failure(ctx context.Context, msg string, err error, component, op string, extra Fields) {
	f := append(extra, Fields{}.Err(err).Op(op)...)
	l.For(component).ErrorContext(ctx, msg, f.Args()...)
}
