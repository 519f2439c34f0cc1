package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"joblog/internal/backend"
	"joblog/internal/cli"
	"joblog/internal/config"
	"joblog/internal/log"
	"joblog/internal/worker"
)

func workerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Mirror persisted jobs to Google Sheets",
		Long: `Consumes persistence notifications and rewrites the jobs sheet after every
persisted snapshot. A cron schedule writes the weekly summary tab.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			once, _ := cmd.Flags().GetBool("once")
			return runWorker(cmd.Context(), cfg, logger, once)
		},
	}
	cmd.Flags().Bool("once", false, "Mirror jobs and write the weekly summary once, then exit")
	return cmd
}

func runWorker(parent context.Context, cfg *config.Config, logger *log.Logger, once bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := cli.SignalContext(parent, logger)
	defer cancel()

	logger.InfoContext(ctx, "Starting joblog worker", log.FieldOperation, log.OpStartup)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	factory := backend.NewFactory(logger)
	res, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	sink, err := factory.CreateSink(ctx, backendCfg)
	if err != nil {
		return err
	}

	mirror := worker.NewMirrorWorker(res.Slot, sink, sink, cfg.Order(), logger)
	scheduler := worker.NewWeeklyReportScheduler(cfg.WeeklyReportSchedule, cfg.Location(),
		res.Slot, sink, cfg.SlotKey, cfg.Order(), logger)

	// Catch up on anything persisted while the worker was down.
	if err := mirror.Sync(ctx, cfg.SlotKey); err != nil {
		logger.ErrorContext(ctx, "Startup mirror failed", log.FieldError, err)
	}
	if once {
		return scheduler.RunOnce(ctx)
	}

	if err := scheduler.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if res.Notifier != nil {
		g.Go(func() error {
			err := res.Notifier.RunConsumer(gctx, mirror.HandleSnapshotPersisted)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.InfoContext(ctx, "AMQP disabled, mirroring only on schedule and startup")
	}
	g.Go(func() error {
		<-gctx.Done()
		return cli.GracefulShutdown(logger, cfg.ShutdownTimeout, scheduler.Stop)
	})
	return g.Wait()
}
