package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/lmnp-erp/lmnp-erp/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TotalsRefresher recomputes declaration totals from the user's records.
type TotalsRefresher interface {
	RefreshTotals(ctx context.Context, userID string) (int, error)
}

// CacheInvalidator drops memoised liasse builds once totals change.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// RefreshTotalsJob handles TaskRefreshTotals.
type RefreshTotalsJob struct {
	Declarations TotalsRefresher
	Cache        CacheInvalidator
	Logger       *slog.Logger
	Metrics      *jobmetrics.Metrics
}

// NewRefreshTotalsJob wires dependencies for the refresh handler. cache may be nil.
func NewRefreshTotalsJob(decls TotalsRefresher, cache CacheInvalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *RefreshTotalsJob {
	return &RefreshTotalsJob{Declarations: decls, Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes refresh tasks. Malformed payloads are not retried.
func (j *RefreshTotalsJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Declarations == nil {
		return errors.New("refresh totals: handler not configured")
	}
	var payload RefreshTotalsPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.UserID == "" {
		return fmt.Errorf("refresh totals: invalid payload: %w", asynq.SkipRetry)
	}

	metrics := jobMetrics(j.Metrics)
	tracker := metrics.Track(TaskRefreshTotals)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskRefreshTotals).With(slog.String("user_id", payload.UserID))
	n, err := j.Declarations.RefreshTotals(ctx, payload.UserID)
	if err != nil {
		logger.Error("refresh declaration totals", slog.Any("error", err))
		return err
	}
	metrics.AddItems(TaskRefreshTotals, n)
	if n > 0 && j.Cache != nil {
		if err := j.Cache.Bump(ctx); err != nil {
			logger.Warn("invalidate liasse cache", slog.Any("error", err))
		}
	}
	logger.Info("refreshed declaration totals", slog.Int("declarations", n))
	return nil
}

func jobMetrics(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func jobLogger(l *slog.Logger, job string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("job", job))
}
