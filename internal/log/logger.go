// Package log configures slog for the binaries and carries the field names
// and components shared by every log line.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger bound to one component. Every record it emits
// carries the component attribute.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the default text handler on stdout; Level is then
	// left to the handler.
	Handler slog.Handler
}

// ParseLevel maps LOG_LEVEL values (debug, info, warn, error) to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return bind(slog.New(handler), config.Component)
}

func bind(base *slog.Logger, component string) *Logger {
	return &Logger{Logger: base.With(FieldComponent, component), base: base, component: component}
}

// With returns a logger for the same component with extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), base: l.base.With(args...), component: l.component}
}

// For returns the logger rebound to another component, keeping attributes
// added through With.
func (l *Logger) For(component string) *Logger {
	if component == l.component {
		return l
	}
	return bind(l.base, component)
}

func (l *Logger) Component() string {
	return l.component
}
