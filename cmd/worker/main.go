package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/warebill/warebill/internal/app"
	"github.com/warebill/warebill/internal/invoices"
	"github.com/warebill/warebill/internal/masterdata/customers"
	"github.com/warebill/warebill/internal/observability"
	"github.com/warebill/warebill/internal/platform/cache"
	"github.com/warebill/warebill/internal/platform/db"
	"github.com/warebill/warebill/internal/ratecards"
	"github.com/warebill/warebill/internal/runs"
	"github.com/warebill/warebill/internal/shared"
	"github.com/warebill/warebill/internal/usage"
	"github.com/warebill/warebill/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	customerService := customers.NewService(customers.NewRepository(pool))
	rateService := ratecards.NewService(ratecards.NewRepository(pool))
	usageService := usage.NewService(usage.NewRepository(pool))
	invoiceService := invoices.NewService(invoices.NewRepository(pool))
	locker := shared.NewRunLock(redisClient)
	runService := runs.NewService(logger, customerService, rateService, usageService, invoiceService, locker, metrics)

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskTypeBillingRun, Handler: jobs.NewBillingRunHandler(logger, runService)},
		{Type: jobs.TaskTypeBillingBatch, Handler: jobs.NewBillingBatchHandler(logger, customerService, invoiceService, runService)},
	}

	var cron []jobs.CronRegistration
	if cfg.BatchCron != "" {
		// The payload stays empty so the handler resolves the period start
		// on every fire, not once at worker boot.
		batchTask, err := jobs.NewBillingBatchTask(jobs.BillingBatchPayload{})
		if err != nil {
			logger.Error("build batch task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.BatchCron,
			Task:    batchTask,
			Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  handlers,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
