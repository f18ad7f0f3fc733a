package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/lmnp-erp/lmnp-erp/internal/app"
	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	jobmetrics "github.com/lmnp-erp/lmnp-erp/internal/jobs"
	"github.com/lmnp-erp/lmnp-erp/internal/liasse"
	"github.com/lmnp-erp/lmnp-erp/internal/platform/cache"
	"github.com/lmnp-erp/lmnp-erp/internal/platform/db"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"
	"github.com/lmnp-erp/lmnp-erp/jobs"
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

	redisClient := cache.Optional(ctx, cfg.RedisAddr, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := jobmetrics.NewMetrics(nil)
	declarationService := declarations.NewService(declarations.NewRepository(pool), records.NewRepository(pool), logger)
	liasseCache := liasse.NewCache(redisClient, cfg.LiasseCacheTTL)
	liasseService := liasse.NewService(declarationService, liasseCache, shared.NewAuditLogger(pool), logger)

	refreshJob := jobs.NewRefreshTotalsJob(declarationService, liasseCache, logger, metrics)
	warmupJob := jobs.NewReportsWarmupJob(declarationService, liasseService, logger, metrics)

	schedule, err := jobs.NightlySchedule(cfg.CronUsers, cfg.RefreshTotalsCron, cfg.ReportsWarmupCron)
	if err != nil {
		logger.Error("build schedule", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRefreshTotals, Handler: refreshJob.Handle},
			{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle},
		},
		Cron: schedule,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
