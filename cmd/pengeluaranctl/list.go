package main

import (
	"context"

	"github.com/spf13/cobra"

	"pengeluaran/internal/config"
	"pengeluaran/internal/render"
	"pengeluaran/internal/services"
)

func newListCmd(a *app) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List expenses with their positions in the filtered view",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := ff.criteria(a.today())
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, _ *config.Config, svc *services.ExpenseService) error {
				snap, err := svc.Snapshot(ctx, c)
				if err != nil {
					return err
				}
				warnLoad(cmd, snap)
				md, err := render.ExpensesMarkdown(snap.Records)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), md)
			})
		},
	}
	ff.register(cmd)
	return cmd
}
