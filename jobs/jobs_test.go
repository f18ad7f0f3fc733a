package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/lmnp-erp/lmnp-erp/internal/declarations"
	jobmetrics "github.com/lmnp-erp/lmnp-erp/internal/jobs"

	_ "github.com/lmnp-erp/lmnp-erp/testing"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type refresherStub struct {
	users []string
	n     int
	err   error
}

func (r *refresherStub) RefreshTotals(ctx context.Context, userID string) (int, error) {
	r.users = append(r.users, userID)
	return r.n, r.err
}

type cacheStub struct {
	bumps int
}

func (c *cacheStub) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

type listerStub struct {
	decls []declarations.Declaration
}

func (l listerStub) List(ctx context.Context, userID string) ([]declarations.Declaration, error) {
	return l.decls, nil
}

type warmerStub struct {
	ids []string
}

func (w *warmerStub) Warmup(ctx context.Context, userID string, ids []string) (int, error) {
	w.ids = append(w.ids, ids...)
	return len(ids), nil
}

func TestTaskConstructors(t *testing.T) {
	task, err := NewRefreshTotalsTask("u1")
	require.NoError(t, err)
	require.Equal(t, TaskRefreshTotals, task.Type())
	var payload RefreshTotalsPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, "u1", payload.UserID)

	task, err = NewReportsWarmupTask("u1", "d1")
	require.NoError(t, err)
	require.Equal(t, TaskReportsWarmup, task.Type())

	_, err = NewRefreshTotalsTask("")
	require.Error(t, err)
	_, err = NewReportsWarmupTask("")
	require.Error(t, err)
}

func TestRefreshTotalsJob(t *testing.T) {
	stub := &refresherStub{n: 2}
	cache := &cacheStub{}
	job := NewRefreshTotalsJob(stub, cache, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewRefreshTotalsTask("u1")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"u1"}, stub.users)
	require.Equal(t, 1, cache.bumps)

	stub.n = 0
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, cache.bumps)

	stub.err = errors.New("db down")
	require.EqualError(t, job.Handle(context.Background(), task), "db down")
	require.Equal(t, 1, cache.bumps)

	err = job.Handle(context.Background(), asynq.NewTask(TaskRefreshTotals, []byte(`{`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
	err = job.Handle(context.Background(), asynq.NewTask(TaskRefreshTotals, []byte(`{}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestReportsWarmupJobListsDeclarations(t *testing.T) {
	warmer := &warmerStub{}
	lister := listerStub{decls: []declarations.Declaration{{ID: "d1"}, {ID: "d2"}}}
	job := NewReportsWarmupJob(lister, warmer, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewReportsWarmupTask("u1")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"d1", "d2"}, warmer.ids)

	warmer.ids = nil
	task, err = NewReportsWarmupTask("u1", "d9")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"d9"}, warmer.ids)

	var unset *ReportsWarmupJob
	require.Error(t, unset.Handle(context.Background(), task))
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, discard).MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rr.Body.String())
}

func TestServeMuxSkipsIncompleteHandlers(t *testing.T) {
	called := false
	mux := newServeMux([]TaskHandler{
		{Type: TaskRefreshTotals, Handler: func(ctx context.Context, t *asynq.Task) error {
			called = true
			return nil
		}},
		{Type: "", Handler: nil},
	})
	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask(TaskRefreshTotals, nil)))
	require.True(t, called)
}

func TestRefreshTotalsJobWithoutCache(t *testing.T) {
	job := NewRefreshTotalsJob(&refresherStub{n: 1}, nil, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewRefreshTotalsTask("u1")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestNightlySchedule(t *testing.T) {
	schedule, err := NightlySchedule([]string{"u1", "u2"}, "0 2 * * *", "30 2 * * *")
	require.NoError(t, err)
	require.Len(t, schedule, 4)
	require.Equal(t, "0 2 * * *", schedule[0].Spec)
	require.Equal(t, TaskRefreshTotals, schedule[0].Task.Type())
	require.Equal(t, TaskReportsWarmup, schedule[1].Task.Type())

	var payload RefreshTotalsPayload
	require.NoError(t, json.Unmarshal(schedule[2].Task.Payload(), &payload))
	require.Equal(t, "u2", payload.UserID)

	schedule, err = NightlySchedule([]string{"u1"}, "0 2 * * *", "")
	require.NoError(t, err)
	require.Len(t, schedule, 1)

	schedule, err = NightlySchedule(nil, "0 2 * * *", "30 2 * * *")
	require.NoError(t, err)
	require.Empty(t, schedule)

	_, err = NightlySchedule([]string{""}, "0 2 * * *", "")
	require.ErrorIs(t, err, errMissingUser)
}

func TestNewWorkerRegistersSchedule(t *testing.T) {
	opts := asynq.RedisClientOpt{Addr: "127.0.0.1:0"}
	schedule, err := NightlySchedule([]string{"u1"}, "0 2 * * *", "30 2 * * *")
	require.NoError(t, err)

	worker, err := NewWorker(WorkerConfig{RedisOpts: opts, Logger: discard, Cron: schedule})
	require.NoError(t, err)
	require.NotNil(t, worker.scheduler)

	worker, err = NewWorker(WorkerConfig{RedisOpts: opts, Logger: discard})
	require.NoError(t, err)
	require.Nil(t, worker.scheduler)

	_, err = NewWorker(WorkerConfig{RedisOpts: opts, Logger: discard, Cron: []CronRegistration{{Spec: "not a cron", Task: schedule[0].Task}}})
	require.Error(t, err)
}
