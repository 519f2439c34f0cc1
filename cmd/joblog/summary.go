package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"joblog/internal/backend"
	"joblog/internal/core"
	"joblog/internal/worker"
)

func summaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the weekly summary of the persisted jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(cmd)
			if err != nil {
				return err
			}

			order := cfg.Order()
			if v, _ := cmd.Flags().GetString("order"); v != "" {
				if order, err = core.ParseSortOrder(v); err != nil {
					return err
				}
			}
			now := time.Now().In(cfg.Location())
			if v, _ := cmd.Flags().GetString("now"); v != "" {
				d, err := core.ParseDate(v)
				if err != nil {
					return err
				}
				now = d.Time
			}

			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			backendCfg.AMQPURL = ""

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			jobs, err := worker.LoadJobs(ctx, res.Slot, cfg.SlotKey)
			if err != nil {
				return err
			}
			return printWeeklyReport(cmd.OutOrStdout(), core.Summarize(jobs, order, now))
		},
	}
	cmd.Flags().String("order", "", "Week order: asc or desc")
	cmd.Flags().String("now", "", "Reference day for the month-to-date total (YYYY-MM-DD)")
	return cmd
}

func printWeeklyReport(out io.Writer, report core.WeeklyReport) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEK ENDING\tJOBS\tEARNED\tUNPAID")
	for _, w := range report.Weeks {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", w.WeekEnding, w.TotalJobs, w.TotalEarned, w.UnpaidJobs)
	}
	fmt.Fprintf(tw, "\nMonth to date (%s)\t\t%s\t\n", report.AsOf.Format("January 2006"), report.MonthToDate)
	return tw.Flush()
}
