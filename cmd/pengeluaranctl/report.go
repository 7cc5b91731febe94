package main

import (
	"context"

	"github.com/spf13/cobra"

	"pengeluaran/internal/config"
	"pengeluaran/internal/render"
	"pengeluaran/internal/services"
)

func newStatsCmd(a *app) *cobra.Command {
	return newReportCmd(a, "stats", "Print totals, category breakdown and daily spending",
		func(s services.Snapshot) (string, error) { return render.SummaryMarkdown(s.Summary()) })
}

func newInsightsCmd(a *app) *cobra.Command {
	return newReportCmd(a, "insights", "Print trend, spikes, top categories and budget advice",
		func(s services.Snapshot) (string, error) { return render.InsightsMarkdown(s.Report()) })
}

func newReportCmd(a *app, use, short string, build func(services.Snapshot) (string, error)) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
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
				md, err := build(snap)
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
