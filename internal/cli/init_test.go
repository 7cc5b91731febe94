package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"pengeluaran/internal/config"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level     string
		wantDebug bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true},
		{level: "info"},
		{level: "loud", wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := SetupLogger(&buf, tt.level)
			logger.Debug("debug line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v (output %q)", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "Unknown log level"); got != tt.wantWarn {
				t.Errorf("warned = %v, want %v", got, tt.wantWarn)
			}
			if slog.Default() != logger {
				t.Error("SetupLogger() should install the default logger")
			}
		})
	}
}

func TestOpenBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	cfg := &config.Config{DataBackend: "csv", CSVPath: filepath.Join(t.TempDir(), "e.csv")}

	res, err := OpenBackend(context.Background(), logger, cfg)
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	if res.Service == nil || res.Store == nil {
		t.Errorf("OpenBackend() = %+v", res)
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}

	cfg.DataBackend = "sheets"
	if _, err := OpenBackend(context.Background(), logger, cfg); err == nil {
		t.Error("OpenBackend() expected error for unknown backend")
	}
}

func TestShutdownRunsCleanupAfterSignal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	cleaned := make(chan struct{})
	ctx, done := shutdownOn(logger, time.Second, func(context.Context) { close(cleaned) }, syscall.SIGUSR1)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	WaitForShutdown(ctx, done)
	select {
	case <-cleaned:
	default:
		t.Error("cleanup did not run")
	}
	if !strings.Contains(buf.String(), "Shutdown complete") {
		t.Errorf("log = %q", buf.String())
	}
}
