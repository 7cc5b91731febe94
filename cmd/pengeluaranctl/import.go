package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pengeluaran/internal/config"
	"pengeluaran/internal/services"
	"pengeluaran/internal/store/csvfile"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Append every expense from a CSV file in the table layout",
		Long: `Import reads a date,amount,category,description table and adds each row
through the same validation as "add". The file is checked completely before
anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			records, err := csvfile.Decode(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for i, e := range records {
				if err := e.Validate(); err != nil {
					return fmt.Errorf("%s: row %d: %w", args[0], i+1, err)
				}
			}
			return a.withService(cmd, func(ctx context.Context, _ *config.Config, svc *services.ExpenseService) error {
				for i, e := range records {
					e.ID = ""
					if _, err := svc.Add(ctx, e); err != nil {
						return fmt.Errorf("row %d: %w", i+1, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d pengeluaran diimpor\n", len(records))
				return nil
			})
		},
	}
}
