package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pengeluaran/internal/config"
	"pengeluaran/internal/core"
	"pengeluaran/internal/services"
)

func newAddCmd(a *app) *cobra.Command {
	var date, category string

	cmd := &cobra.Command{
		Use:   "add AMOUNT DESCRIPTION...",
		Short: "Record an expense",
		Example: `  pengeluaranctl add 25000 Nasi goreng --category "Makanan & Minuman"
  pengeluaranctl add 150000 Listrik --category "Tagihan & Utilitas" --date 2024-01-05`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseExpense(args, date, category, a.today())
			if err != nil {
				return err
			}
			return a.withService(cmd, func(ctx context.Context, _ *config.Config, svc *services.ExpenseService) error {
				created, err := svc.Add(ctx, e)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pengeluaran berhasil ditambahkan: %s %s %s (%s)\n",
					created.Date, created.Amount.Format(), created.Category, created.Description)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&category, "category", string(core.Other), "expense category")
	return cmd
}

func parseExpense(args []string, date, category string, today core.Date) (core.Expense, error) {
	amount, err := core.ParseAmount(args[0])
	if err != nil {
		return core.Expense{}, err
	}
	cat, err := core.ParseCategory(category)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w (choose one of: %s)", err, categoryList())
	}
	d := today
	if date != "" {
		if d, err = core.ParseDate(date); err != nil {
			return core.Expense{}, err
		}
	}
	e := core.Expense{
		Date:        d,
		Amount:      amount,
		Category:    cat,
		Description: strings.TrimSpace(strings.Join(args[1:], " ")),
	}
	return e, e.Validate()
}

func categoryList() string {
	names := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
