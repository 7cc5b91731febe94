package log

import (
	"log/slog"
	"net/http"
	"time"

	"pengeluaran/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldReferer    = "referer"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldExpenseID  = "expense_id"
	FieldExpenseDay = "expense_date"
	FieldAmount     = "amount"
	FieldCategory   = "category"
	FieldRecords    = "records"
	FieldBackend    = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentExpense   = "expense"
	ComponentStore     = "store"
	ComponentAnalytics = "analytics"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpDelete   = "delete"
	OpList     = "list"
	OpAppend   = "append"
	OpSync     = "sync"
	OpValidate = "validate"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields accumulates attributes in the order they were added.
type Fields []slog.Attr

// Op records the operation being logged.
func (f Fields) Op(op string) Fields {
	return append(f, slog.String(FieldOperation, op))
}

func (f Fields) Err(err error) Fields {
	if err == nil {
		return f
	}
	return append(f, slog.String(FieldError, err.Error()))
}

func (f Fields) ClientIP(ip string) Fields {
	return append(f, slog.String(FieldClientIP, ip))
}

// Expense adds id, date, amount and category. Descriptions are free text
// typed by the user and never logged.
func (f Fields) Expense(e core.Expense) Fields {
	if e.ID != "" {
		f = append(f, slog.String(FieldExpenseID, e.ID))
	}
	return append(f,
		slog.String(FieldExpenseDay, e.Date.String()),
		slog.String(FieldAmount, e.Amount.String()),
		slog.String(FieldCategory, e.Category.String()))
}

// Request adds method, path and query. The user agent and referer are only
// worth logging once per request, so they are opt-in.
func (f Fields) Request(r *http.Request, withClient bool) Fields {
	f = append(f,
		slog.String(FieldMethod, r.Method),
		slog.String(FieldPath, r.URL.Path),
		slog.String(FieldQuery, r.URL.RawQuery))
	if withClient {
		f = append(f,
			slog.String(FieldUserAgent, r.UserAgent()),
			slog.String(FieldReferer, r.Referer()))
	}
	return f
}

func (f Fields) Response(status int, elapsed time.Duration) Fields {
	return append(f,
		slog.Int(FieldStatusCode, status),
		slog.Int64(FieldDuration, elapsed.Milliseconds()),
		slog.Bool(FieldSuccess, status < 400))
}

// Args converts the fields for the variadic slog methods.
func (f Fields) Args() []any {
	args := make([]any, len(f))
	for i, a := range f {
		args[i] = a
	}
	return args
}
