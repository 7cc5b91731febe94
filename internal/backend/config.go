package backend

import (
	"errors"
	"fmt"
	"strings"

	"pengeluaran/internal/config"
)

// FromAppConfig picks the backend settings out of the application config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("app config is nil")
	}
	c := Config{
		Type:         BackendType(strings.ToLower(strings.TrimSpace(app.DataBackend))),
		CSVPath:      app.CSVPath,
		SQLiteDBPath: app.SQLiteDBPath,
		AMQPURL:      app.AMQPURL,
		AMQPExchange: app.AMQPExchange,
		AMQPQueue:    app.AMQPQueue,
	}
	if !c.Type.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %q (want one of %s)",
			app.DataBackend, strings.Join(TypeNames(), ", "))
	}
	return c, nil
}

// Validate reports the first setting the selected backend is missing.
func (c Config) Validate() error {
	switch c.Type {
	case CSVBackend:
		if strings.TrimSpace(c.CSVPath) == "" {
			return errors.New("CSV file path is required for csv backend")
		}
	case SQLiteBackend:
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid backend type: %q", c.Type)
	}

	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return errors.New("AMQP exchange and queue are required when AMQP URL is set")
	}
	return nil
}
