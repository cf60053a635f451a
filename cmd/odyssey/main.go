package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting/payments"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-bff/internal/app"
	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
	"github.com/odyssey-erp/odyssey-bff/internal/masterdata/items"
	"github.com/odyssey-erp/odyssey-bff/internal/observability"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-bff/internal/procurement"
	"github.com/odyssey-erp/odyssey-bff/internal/sales"
	"github.com/odyssey-erp/odyssey-bff/internal/shared"
	"github.com/odyssey-erp/odyssey-bff/jobs"
	"github.com/odyssey-erp/odyssey-bff/report"
)

func main() {
	if app.SkipStartup("http server") {
		return
	}

	frappe.UseNumericDecimals()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	erp, err := frappe.NewClient(frappe.Config{
		BaseURL:   cfg.FrappeURL,
		APIKey:    cfg.FrappeAPIKey,
		APISecret: cfg.FrappeAPISecret,
		Timeout:   cfg.FrappeTimeout,
	}, frappe.WithRecorder(metrics))
	if err != nil {
		logger.Error("init frappe client", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(cfg.RedisOptions().AsynqOpt())
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(cfg.RedisOptions().AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(erp, reportCache, reports.Config{
		ListLimit: cfg.FrappeListLimit,
		Logger:    logger,
	})
	pdfClient := report.NewClient(cfg.GotenbergURL, report.WithTimeout(cfg.AppRequestTimeout))

	paymentService := payments.NewService(erp, payments.Options{
		Idempotency:    shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL),
		Cache:          reportCache,
		Warmup:         jobClient,
		DefaultCompany: cfg.FrappeCompany,
		ListLimit:      cfg.FrappeListLimit,
		Logger:         logger,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ReportsHandler:     reports.NewHandler(reportService, pdfClient, logger),
		PaymentsHandler:    payments.NewHandler(paymentService, logger),
		ProcurementHandler: procurement.NewHandler(procurement.NewService(erp, logger), logger),
		SalesHandler:       sales.NewHandler(logger, sales.NewService(erp)),
		ItemsHandler:       items.NewHandler(logger, items.NewService(items.NewRepository(erp))),
		ReportHandler:      report.NewHandler(pdfClient, logger),
		JobHandler:         jobs.NewHandler(inspector, logger),
		Upstream:           erp,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("frappe_url", cfg.FrappeURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
