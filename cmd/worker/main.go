package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-bff/internal/app"
	"github.com/odyssey-erp/odyssey-bff/internal/frappe"
	jobmetrics "github.com/odyssey-erp/odyssey-bff/internal/jobs"
	"github.com/odyssey-erp/odyssey-bff/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-bff/jobs"
)

func main() {
	if app.SkipStartup("worker") {
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

	erp, err := frappe.NewClient(frappe.Config{
		BaseURL:   cfg.FrappeURL,
		APIKey:    cfg.FrappeAPIKey,
		APISecret: cfg.FrappeAPISecret,
		Timeout:   cfg.FrappeTimeout,
	})
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

	reportService := reports.NewService(erp, reports.NewCache(redisClient, cfg.ReportCacheTTL), reports.Config{
		ListLimit: cfg.FrappeListLimit,
		Logger:    logger,
	})
	warmupJob := jobs.NewAgingWarmupJob(reportService, logger, jobmetrics.NewMetrics(nil))

	var cron []jobs.CronRegistration
	if cfg.AgingWarmupCron != "" {
		warmupTask, err := jobs.NewAgingWarmupTask(jobs.AgingWarmupPayload{Company: cfg.FrappeCompany})
		if err != nil {
			logger.Error("build aging warmup task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.AgingWarmupCron,
			Task:    warmupTask,
			Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.RedisOptions().AsynqOpt(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAgingWarmup, Handler: warmupJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("aging_warmup_cron", cfg.AgingWarmupCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
