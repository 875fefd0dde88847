package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ricavi/internal/amqp"
	"ricavi/internal/backend"
	"ricavi/internal/cli"
	"ricavi/internal/log"
	"ricavi/internal/services"
	gsheet "ricavi/internal/sheets/google"
	"ricavi/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting ricavi-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}
	if cfg.DataBackend != string(backend.SQLiteBackend) {
		// A memory backend only sees its own snapshot, never the server's writes.
		logger.Warn("Sync worker should share the sqlite backend with the server", "backend", cfg.DataBackend)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	svc := services.NewRevenueService(res.Backend, services.Options{
		Policy: cfg.Policy(),
		Rooms:  cfg.Rooms,
	})
	syncWorker := worker.NewSyncWorker(svc, sheetsClient, res.Backend)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", "error", err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}
	})

	// On startup, mirror every stored month in case updates were missed
	logger.Info("Performing startup sync")
	if err := syncWorker.StartupSync(ctx); err != nil {
		logger.Error("Failed startup sync", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeMonthUpdates(gctx, syncWorker.HandleMonthUpdated)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := syncWorker.StartupSync(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
