package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pengeluaran/internal/backend"
	"pengeluaran/internal/cli"
	"pengeluaran/internal/config"
	"pengeluaran/internal/core"
	"pengeluaran/internal/filter"
	"pengeluaran/internal/render"
	"pengeluaran/internal/services"
)

func main() {
	cli.LoadEnvFile()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = newRootCmd()

// app carries the persistent flags shared by every subcommand.
type app struct {
	backend  string
	csvPath  string
	dbPath   string
	logLevel string
	width    int
	plain    bool

	today func() core.Date
}

func newRootCmd() *cobra.Command {
	a := &app{today: core.Today}

	root := &cobra.Command{
		Use:   "pengeluaranctl",
		Short: "Record and analyse personal expenses from the terminal",
		Long: `Pengeluaranctl works on the same expense table as the web dashboard.
It adds and deletes records, lists them and prints the statistics and
insights reports for any date range and category.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.backend, "backend", "", fmt.Sprintf("data backend (%s); defaults to DATA_BACKEND", strings.Join(backend.TypeNames(), ", ")))
	pf.StringVar(&a.csvPath, "csv", "", "CSV file path; defaults to EXPENSES_CSV_PATH")
	pf.StringVar(&a.dbPath, "db", "", "SQLite database path; defaults to SQLITE_DB_PATH")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.IntVar(&a.width, "width", 100, "wrap width for terminal output, 0 disables wrapping")
	pf.BoolVar(&a.plain, "plain", false, "print raw markdown instead of styled output")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newStatsCmd(a),
		newInsightsCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// config loads the environment configuration with flag overrides applied.
func (a *app) config() (*config.Config, error) {
	cfg := config.Load()
	if a.backend != "" {
		cfg.DataBackend = a.backend
	}
	if a.csvPath != "" {
		cfg.CSVPath = a.csvPath
	}
	if a.dbPath != "" {
		cfg.SQLiteDBPath = a.dbPath
	}
	cfg.LogLevel = a.logLevel
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withService opens the configured backend for the duration of fn.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, svc *services.ExpenseService) error) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	ctx := cmd.Context()
	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to release backend", "error", err)
		}
	}()
	return fn(ctx, cfg, res.Service)
}

// print writes markdown to the command output, styled unless --plain is set.
func (a *app) print(w io.Writer, markdown string) error {
	if a.plain {
		_, err := io.WriteString(w, markdown)
		return err
	}
	out, err := render.Terminal(markdown, a.width)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// warnLoad reports a table that could not be parsed.
func warnLoad(cmd *cobra.Command, snap services.Snapshot) {
	if snap.LoadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Peringatan: file data rusak dan tidak dapat dibaca (%v)\n", snap.LoadErr)
	}
}

// filterFlags are the date range and category selectors.
type filterFlags struct {
	from     string
	to       string
	dates    bool
	category string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.from, "from", "", "start date (YYYY-MM-DD), enables the date filter")
	fs.StringVar(&f.to, "to", "", "end date (YYYY-MM-DD), enables the date filter")
	fs.BoolVar(&f.dates, "dates", false, fmt.Sprintf("filter by date, defaulting to the last %d days", filter.DefaultWindowDays))
	fs.StringVar(&f.category, "category", "", fmt.Sprintf("category to show, or %q", core.AllCategories))
}

func (f *filterFlags) criteria(today core.Date) (filter.Criteria, error) {
	return filter.Parse(f.from, f.to, f.dates, f.category, today)
}
