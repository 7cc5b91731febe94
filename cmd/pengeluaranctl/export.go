package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pengeluaran/internal/config"
	"pengeluaran/internal/services"
	gsheet "pengeluaran/internal/sheets/google"
	"pengeluaran/internal/store/csvfile"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		ff     filterFlags
		output string
		sheets bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered expenses as CSV or mirror the table to Google Sheets",
		Long: `Export writes the filtered expenses in the four-column table layout to
stdout or --output. With --sheets the whole table replaces the configured
Google Sheets tab instead; filter flags are ignored in that mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := ff.criteria(a.today())
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, cfg *config.Config, svc *services.ExpenseService) error {
				snap, err := svc.Snapshot(ctx, c)
				if err != nil {
					return err
				}
				if snap.LoadErr != nil {
					return snap.LoadErr
				}
				if sheets {
					return exportSheets(ctx, cmd.OutOrStdout(), cfg, snap)
				}
				return exportCSV(cmd.OutOrStdout(), output, snap)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	cmd.Flags().BoolVar(&sheets, "sheets", false, "replace the Google Sheets mirror with the full table")
	ff.register(cmd)
	return cmd
}

func exportCSV(stdout io.Writer, output string, snap services.Snapshot) error {
	if output == "" {
		return csvfile.Encode(stdout, snap.Records)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := csvfile.Encode(f, snap.Records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d pengeluaran diekspor ke %s\n", len(snap.Records), output)
	return nil
}

func exportSheets(ctx context.Context, stdout io.Writer, cfg *config.Config, snap services.Snapshot) error {
	if err := cfg.ValidateSheets(); err != nil {
		return err
	}
	mirror, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return err
	}
	if err := mirror.Replace(ctx, snap.All); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d pengeluaran disalin ke sheet %q\n", len(snap.All), cfg.GoogleSheetName)
	return nil
}
