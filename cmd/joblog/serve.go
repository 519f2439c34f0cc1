package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"joblog/internal/backend"
	"joblog/internal/cli"
	"joblog/internal/config"
	joblogHTTP "joblog/internal/http"
	"joblog/internal/log"
	"joblog/internal/services"
)

func serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Loads the persisted jobs, serves the job API and persists every change in the background.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().String("port", "", "Override PORT")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, logger *log.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := cli.SignalContext(parent, logger)
	defer cancel()

	logger.InfoContext(ctx, "Starting joblog server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}

	writer := services.NewSnapshotWriter(res.Slot, cfg.SlotKey, services.SnapshotWriterConfig{
		MaxRetries: cfg.WriterMaxRetries,
		RetryDelay: cfg.WriterRetryDelay,
	}, logger)
	if res.Notifier != nil {
		notifier := res.Notifier
		writer.Observe(func(ctx context.Context, r services.PersistResult) {
			if r.Err != nil {
				return
			}
			if err := notifier.PublishSnapshotPersisted(ctx, r.Key, r.Revision, r.Jobs); err != nil {
				logger.WarnContext(ctx, "Failed to publish persistence notification",
					log.NewFields().WithSnapshot(r.Key, r.Revision, r.Jobs).
						WithError(err, log.ErrorTypeNetwork).ToSlice()...)
			}
		})
	}

	store := services.NewJobStore(res.Slot, writer, services.JobStoreConfig{
		Key:       cfg.SlotKey,
		Validator: cfg.Validator(),
	}, logger)
	// A failed load starts the session empty; the error stays visible on /status.
	_ = store.Load(ctx)

	// The writer outlives the signal context so Stop can drain the queue.
	if err := writer.Start(context.Background()); err != nil {
		return err
	}

	server := joblogHTTP.NewServer(":"+cfg.Port, store, joblogHTTP.Options{
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,
		SummaryOrder: cfg.Order(),
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(gctx, "HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return cli.GracefulShutdown(logger, cfg.ShutdownTimeout,
			server.Shutdown,
			store.Flush,
			writer.Stop,
			func(context.Context) error { return res.Cleanup() },
		)
	})
	return g.Wait()
}
