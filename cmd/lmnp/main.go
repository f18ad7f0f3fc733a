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

	"github.com/lmnp-erp/lmnp-erp/internal/accounting/reports"
	reportshttp "github.com/lmnp-erp/lmnp-erp/internal/accounting/reports/http"
	"github.com/lmnp-erp/lmnp-erp/internal/app"
	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	"github.com/lmnp-erp/lmnp-erp/internal/liasse"
	liassehttp "github.com/lmnp-erp/lmnp-erp/internal/liasse/http"
	"github.com/lmnp-erp/lmnp-erp/internal/observability"
	"github.com/lmnp-erp/lmnp-erp/internal/platform/cache"
	"github.com/lmnp-erp/lmnp-erp/internal/platform/db"
	"github.com/lmnp-erp/lmnp-erp/internal/records"
	"github.com/lmnp-erp/lmnp-erp/internal/shared"
	"github.com/lmnp-erp/lmnp-erp/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()
	if err := db.Migrate(ctx, dbpool); err != nil {
		logger.Error("migrate schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient := cache.Optional(ctx, cfg.RedisAddr, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	recordsRepo := records.NewRepository(dbpool)

	declarationService := declarations.NewService(declarations.NewRepository(dbpool), recordsRepo, logger)
	reportService := reports.NewService(recordsRepo)
	liasseService := liasse.NewService(declarationService, liasse.NewCache(redisClient, cfg.LiasseCacheTTL), auditLogger, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer inspector.Close()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		DeclarationsHandler: declarations.NewHandler(logger, declarationService),
		LiasseHandler:       liassehttp.NewHandler(logger, liasseService, metrics),
		ReportsHandler:      reportshttp.NewHandler(logger, reportService, metrics),
		JobsHandler:         jobs.NewHandler(inspector, logger),
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
