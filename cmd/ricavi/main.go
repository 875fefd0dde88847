package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ricavi/internal/amqp"
	"ricavi/internal/backend"
	"ricavi/internal/cache"
	"ricavi/internal/cli"
	"ricavi/internal/core"
	apphttp "ricavi/internal/http"
	"ricavi/internal/log"
	"ricavi/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

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

	summaries := cache.NewLRUCache[core.Period, core.MonthSummary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(summaries)
	cacheManager.StartCleanup(cfg.SummaryCacheTTL)

	// Publishing is optional; without AMQP_URL no sync worker is notified.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		publisher = amqpClient
		logger.Info("AMQP publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewRevenueService(res.Backend, services.Options{
		Policy:    cfg.Policy(),
		Rooms:     cfg.Rooms,
		Cache:     summaries,
		Publisher: publisher,
	})

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Ping:   res.Ping,
		Logger: logger.WithComponent(log.ComponentHTTP),
		Cache:  summaries,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting ricavi server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"rooms", len(cfg.Rooms),
		"entry_scale", cfg.EntryScale,
		"overnight_threshold", cfg.OvernightThreshold)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
