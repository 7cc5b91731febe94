// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	applog "pengeluaran/internal/log"
)

// Backends accepted by DATA_BACKEND.
var Backends = []string{"csv", "sqlite", "memory"}

type Config struct {
	Port               string
	RateLimitPerMinute int
	ShutdownTimeout    time.Duration

	DataBackend  string
	CSVPath      string
	SQLiteDBPath string

	// An empty AMQPURL disables change events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID string
	GoogleSheetName     string

	LogLevel string
}

// Load reads every setting, using the default for unset or unparsable
// values. Call Validate before use.
func Load() *Config {
	return &Config{
		Port:               env("PORT", "8081", parseString),
		RateLimitPerMinute: env("RATE_LIMIT_PER_MINUTE", 60, strconv.Atoi),
		ShutdownTimeout:    env("SHUTDOWN_TIMEOUT", 10*time.Second, time.ParseDuration),

		DataBackend:  env("DATA_BACKEND", "csv", parseString),
		CSVPath:      env("EXPENSES_CSV_PATH", "expenses.csv", parseString),
		SQLiteDBPath: env("SQLITE_DB_PATH", "./data/pengeluaran.db", parseString),

		AMQPURL:      env("AMQP_URL", "", parseString),
		AMQPExchange: env("AMQP_EXCHANGE", "pengeluaran", parseString),
		AMQPQueue:    env("AMQP_QUEUE", "expense_events", parseString),

		GoogleSpreadsheetID: env("GOOGLE_SPREADSHEET_ID", "", parseString),
		GoogleSheetName:     env("GOOGLE_SHEET_NAME", "Pengeluaran", parseString),

		LogLevel: env("LOG_LEVEL", "info", parseString),
	}
}

// Validate reports every invalid setting at once. For the sqlite backend it
// also creates the database directory.
func (c *Config) Validate() error {
	var p problems

	if port, err := strconv.Atoi(c.Port); err != nil {
		p.addf("invalid port '%s': must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		p.addf("invalid port %d: must be between 1 and 65535", port)
	}

	switch c.DataBackend {
	case "csv":
		if strings.TrimSpace(c.CSVPath) == "" {
			p.addf("CSV file path cannot be empty when using csv backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			p.addf("SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureParentDir(c.SQLiteDBPath); err != nil {
			p.addf("cannot create SQLite database directory: %v", err)
		}
	default:
		if !slices.Contains(Backends, c.DataBackend) {
			p.addf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends)
		}
	}

	if c.AMQPURL != "" {
		c.checkAMQP(&p)
	}

	if c.RateLimitPerMinute < 1 {
		p.addf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute)
	}
	if c.ShutdownTimeout < time.Second {
		p.addf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout)
	}
	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		p.addf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel)
	}
	return p.err()
}

func (c *Config) checkAMQP(p *problems) {
	u, err := url.Parse(c.AMQPURL)
	switch {
	case err != nil:
		p.addf("invalid AMQP URL: %v", err)
	case u.Scheme != "amqp" && u.Scheme != "amqps":
		p.addf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme)
	}
	if c.AMQPExchange == "" {
		p.addf("AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		p.addf("AMQP queue name cannot be empty when AMQP URL is provided")
	}
}

// ValidateWorker runs Validate and then checks what the sync worker needs:
// events, a store another process can read, and a spreadsheet.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var p problems
	if c.AMQPURL == "" {
		p.addf("AMQP_URL is required by the sync worker")
	}
	if c.DataBackend == "memory" {
		p.addf("the sync worker cannot read the memory backend of another process")
	}
	c.checkSheets(&p)
	return p.err()
}

// ValidateSheets checks the Google Sheets mirror settings alone.
func (c *Config) ValidateSheets() error {
	var p problems
	c.checkSheets(&p)
	return p.err()
}

func (c *Config) checkSheets(p *problems) {
	if strings.TrimSpace(c.GoogleSpreadsheetID) == "" {
		p.addf("GOOGLE_SPREADSHEET_ID is required for the Google Sheets mirror")
	}
	if strings.TrimSpace(c.GoogleSheetName) == "" {
		p.addf("GOOGLE_SHEET_NAME cannot be empty")
	}
}

// problems collects validation messages into one error.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New("configuration validation failed:\n- " + strings.Join(p, "\n- "))
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseString(s string) (string, error) { return s, nil }

// env returns the parsed value of key, or def when it is unset, empty or
// does not parse.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}
