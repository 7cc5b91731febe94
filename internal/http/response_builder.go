package http

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
)

// Client-side events understood by web/static/app.js.
const (
	eventExpenseCreated   = "expense:created"
	eventExpenseDeleted   = "expense:deleted"
	eventFormReset        = "form:reset"
	eventReportsRefresh   = "reports:refresh"
	eventShowNotification = "show-notification"
)

// NotificationType selects the toast style.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// notificationMillis is how long each toast stays visible.
var notificationMillis = map[NotificationType]int{
	NotificationSuccess: 3000,
	NotificationInfo:    3000,
	NotificationWarning: 5000,
	NotificationError:   5000,
}

// HTMXResponseBuilder assembles status, headers, HX-Trigger events and body,
// then writes them in one go.
type HTMXResponseBuilder struct {
	status  int
	header  http.Header
	events  []string
	payload map[string]any
	body    []byte
}

func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		status:  http.StatusOK,
		header:  http.Header{},
		payload: map[string]any{},
	}
}

func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.status = code
	return b
}

// Trigger adds an HX-Trigger event. Triggering the same event twice keeps
// the last payload.
func (b *HTMXResponseBuilder) Trigger(event string, detail any) *HTMXResponseBuilder {
	if _, seen := b.payload[event]; !seen {
		b.events = append(b.events, event)
	}
	b.payload[event] = detail
	return b
}

func (b *HTMXResponseBuilder) TriggerExpenseCreated(id string) *HTMXResponseBuilder {
	return b.Trigger(eventExpenseCreated, map[string]string{"id": id})
}

func (b *HTMXResponseBuilder) TriggerExpenseDeleted(id string) *HTMXResponseBuilder {
	return b.Trigger(eventExpenseDeleted, map[string]string{"id": id})
}

func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger(eventFormReset, struct{}{})
}

// TriggerReportsRefresh makes the page reload the list, statistics and
// insights partials.
func (b *HTMXResponseBuilder) TriggerReportsRefresh() *HTMXResponseBuilder {
	return b.Trigger(eventReportsRefresh, struct{}{})
}

// TriggerNotification shows a toast for durationMs; a non-positive duration
// uses the default for the type.
func (b *HTMXResponseBuilder) TriggerNotification(kind NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	if durationMs <= 0 {
		durationMs = notificationMillis[kind]
	}
	return b.Trigger(eventShowNotification, map[string]any{
		"type":     kind,
		"message":  message,
		"duration": durationMs,
	})
}

func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 0)
}

func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 0)
}

func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.header.Set(name, value)
	return b
}

func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.header.Set("Content-Type", "text/html; charset=utf-8")
	b.body = []byte(html)
	return b
}

// BodyJSON encodes v as the body. A value that cannot be encoded turns the
// response into a 500.
func (b *HTMXResponseBuilder) BodyJSON(v any) *HTMXResponseBuilder {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		b.status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"encoding failed"}` + "\n")
	}
	b.header.Set("Content-Type", "application/json")
	b.body = buf.Bytes()
	return b
}

func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	dst := w.Header()
	for name, values := range b.header {
		dst[name] = values
	}
	if trigger, ok := b.triggerHeader(); ok {
		dst.Set("HX-Trigger", trigger)
	}
	w.WriteHeader(b.status)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// triggerHeader renders the events as one JSON object in the order they
// were added.
func (b *HTMXResponseBuilder) triggerHeader() (string, bool) {
	if len(b.events) == 0 {
		return "", false
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, event := range b.events {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(event)
		detail, err := json.Marshal(b.payload[event])
		if err != nil {
			detail = []byte("null")
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(detail)
	}
	buf.WriteByte('}')
	return buf.String(), true
}

// ErrorResponse is an HTML fragment carrying the escaped message.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error" role="alert">` + template.HTMLEscapeString(message) + `</div>`)
}

// JSONError is the API counterpart of ErrorResponse.
func JSONError(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		BodyJSON(map[string]string{"error": message})
}

func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func UnprocessableEntityError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError answers 405 with the Allow header set.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
