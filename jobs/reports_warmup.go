package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	jobmetrics "github.com/lmnp-erp/lmnp-erp/internal/jobs"
)

const warmupTimeout = 30 * time.Second

// DeclarationLister lists the declarations of a user.
type DeclarationLister interface {
	List(ctx context.Context, userID string) ([]declarations.Declaration, error)
}

// LiasseWarmer precomputes liasse mappings.
type LiasseWarmer interface {
	Warmup(ctx context.Context, userID string, declarationIDs []string) (int, error)
}

// ReportsWarmupJob handles TaskReportsWarmup.
type ReportsWarmupJob struct {
	Declarations DeclarationLister
	Liasse       LiasseWarmer
	Logger       *slog.Logger
	Metrics      *jobmetrics.Metrics
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(decls DeclarationLister, warmer LiasseWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Declarations: decls, Liasse: warmer, Logger: logger, Metrics: metrics}
}

// Handle processes warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Declarations == nil || j.Liasse == nil {
		return errors.New("reports warmup: handler not configured")
	}
	var payload ReportsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.UserID == "" {
		return fmt.Errorf("reports warmup: invalid payload: %w", asynq.SkipRetry)
	}

	metrics := jobMetrics(j.Metrics)
	tracker := metrics.Track(TaskReportsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	logger := jobLogger(j.Logger, TaskReportsWarmup).With(slog.String("user_id", payload.UserID))
	ids := payload.DeclarationIDs
	if len(ids) == 0 {
		decls, err := j.Declarations.List(ctx, payload.UserID)
		if err != nil {
			logger.Error("list declarations", slog.Any("error", err))
			return err
		}
		for _, d := range decls {
			ids = append(ids, d.ID)
		}
	}
	if len(ids) == 0 {
		logger.Info("no declarations to warm")
		return nil
	}

	warmed, err := j.Liasse.Warmup(ctx, payload.UserID, ids)
	metrics.AddItems(TaskReportsWarmup, warmed)
	if err != nil {
		logger.Error("warm liasse cache", slog.Int("warmed", warmed), slog.Any("error", err))
		return err
	}
	logger.Info("warmed liasse cache", slog.Int("declarations", warmed))
	return nil
}
