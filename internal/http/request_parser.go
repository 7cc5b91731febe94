// Package http serves the expense page, its HTMX partials and the JSON API.
package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
)

const maxBodyBytes = 64 << 10

// ParseCriteria reads the from, to, dates and category parameters. Defaults
// follow filter.Parse.
func ParseCriteria(values url.Values, today core.Date) (filter.Criteria, error) {
	return filter.Parse(values.Get("from"), values.Get("to"), isTruthy(values.Get("dates")), values.Get("category"), today)
}

// CriteriaValues turns c back into query parameters for partial URLs and
// delete forms.
func CriteriaValues(c filter.Criteria) url.Values {
	v := url.Values{}
	if c.Range != nil {
		v.Set("from", c.Range.Start.String())
		v.Set("to", c.Range.End.String())
	}
	if c.Category != "" && c.Category != core.AllCategories {
		v.Set("category", string(c.Category))
	}
	return v
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// ParseExpense builds an unvalidated expense from the body. A missing date
// means today; an unknown category is kept as given so validation can name
// it.
func ParseExpense(p *RequestBodyParser, today core.Date) (core.Expense, error) {
	date := today
	if raw := p.Get("date"); raw != "" {
		d, err := core.ParseDate(raw)
		if err != nil {
			return core.Expense{}, err
		}
		date = d
	}
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return core.Expense{}, err
	}

	category := core.Category(p.Get("category"))
	if known, err := core.ParseCategory(string(category)); err == nil {
		category = known
	}
	return core.Expense{Date: date, Amount: amount, Category: category, Description: p.Get("description")}, nil
}

// RequestBodyParser reads a form-encoded or JSON object body into flat
// string fields. HTMX posts forms; API clients post JSON.
type RequestBodyParser struct {
	raw       []byte
	mediaType string
	readErr   error

	done   bool
	err    error
	isJSON bool
	fields url.Values
}

// NewRequestBodyParser reads at most maxBodyBytes of the body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.mediaType, _, _ = mime.ParseMediaType(r.Header.Get("Content-Type"))
	if r.Body != nil {
		p.raw, p.readErr = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body once; later calls return the first result. A body
// is JSON when declared so or when it starts with '{'.
func (p *RequestBodyParser) Parse() error {
	if p.done {
		return p.err
	}
	p.done = true
	p.fields = url.Values{}

	switch body := bytes.TrimSpace(p.raw); {
	case p.readErr != nil:
		p.err = p.readErr
	case len(body) == 0:
	case p.mediaType == "application/json" || body[0] == '{':
		p.isJSON = true
		p.err = p.decodeJSON(body)
	default:
		p.fields, p.err = url.ParseQuery(string(body))
	}
	return p.err
}

func (p *RequestBodyParser) decodeJSON(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("decode JSON body: %w", err)
	}
	for k, v := range obj {
		switch v := v.(type) {
		case string:
			p.fields.Set(k, v)
		case json.Number:
			p.fields.Set(k, v.String())
		case bool:
			p.fields.Set(k, fmt.Sprint(v))
		}
	}
	return nil
}

// Get returns the sanitized field, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.fields.Get(key))
}

// Values returns every field sanitized, so filter parameters can come from
// either body type.
func (p *RequestBodyParser) Values() url.Values {
	out := make(url.Values, len(p.fields))
	for k := range p.fields {
		out.Set(k, p.Get(k))
	}
	return out
}

func (p *RequestBodyParser) IsJSON() bool { return p.isJSON }

// RequireMethod returns a 405 response unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET accepts GET and HEAD.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
