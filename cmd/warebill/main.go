package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warebill/warebill/internal/app"
	billinghttp "github.com/warebill/warebill/internal/billing/http"
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
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo)
	customerHandler := customers.NewHandler(logger, customerService)

	rateRepo := ratecards.NewRepository(pool)
	rateService := ratecards.NewService(rateRepo)
	rateHandler := ratecards.NewHandler(logger, rateService)

	usageRepo := usage.NewRepository(pool)
	usageService := usage.NewService(usageRepo)
	usageHandler := usage.NewHandler(logger, usageService)

	invoiceRepo := invoices.NewRepository(pool)
	invoiceService := invoices.NewService(invoiceRepo)
	invoiceHandler := invoices.NewHandler(logger, invoiceService)

	locker := shared.NewRunLock(redisClient)
	runService := runs.NewService(logger, customerService, rateService, usageService, invoiceService, locker, metrics)
	billingHandler := billinghttp.NewHandler(logger, runService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		CustomerHandler: customerHandler,
		RateCardHandler: rateHandler,
		UsageHandler:    usageHandler,
		BillingHandler:  billingHandler,
		InvoiceHandler:  invoiceHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
