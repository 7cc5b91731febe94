package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pengeluaran/internal/config"
	"pengeluaran/internal/core"
	"pengeluaran/internal/services"
)

var errNoTarget = errors.New("give a POSITION or --id")

func newDeleteCmd(a *app) *cobra.Command {
	var (
		ff filterFlags
		id string
	)

	cmd := &cobra.Command{
		Use:     "delete [POSITION]",
		Aliases: []string{"rm"},
		Short:   "Delete an expense by id or by its position in the filtered list",
		Long: `Delete removes one expense. POSITION counts from 0 in the list printed by
"pengeluaranctl list" with the same filter flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (id == "") == (len(args) == 0) {
				return errNoTarget
			}
			c, err := ff.criteria(a.today())
			if err != nil {
				return err
			}
			pos := -1
			if len(args) == 1 {
				if pos, err = strconv.Atoi(args[0]); err != nil || pos < 0 {
					return fmt.Errorf("invalid position %q", args[0])
				}
			}
			return a.withService(cmd, func(ctx context.Context, _ *config.Config, svc *services.ExpenseService) error {
				var (
					removed core.Expense
					err     error
				)
				if id != "" {
					removed, err = svc.DeleteByID(ctx, id)
				} else {
					removed, err = svc.DeleteFiltered(ctx, c, pos)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pengeluaran dihapus: %s %s %s (%s)\n",
					removed.Date, removed.Amount.Format(), removed.Category, removed.Description)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id of the expense to delete")
	ff.register(cmd)
	return cmd
}
