package jobs

import (
	"fmt"

	"github.com/hibiken/asynq"
)

// NightlySchedule registers a totals refresh then a liasse warmup for each user.
// An empty spec disables that task.
func NightlySchedule(userIDs []string, refreshSpec, warmupSpec string) ([]CronRegistration, error) {
	out := make([]CronRegistration, 0, 2*len(userIDs))
	for _, userID := range userIDs {
		if refreshSpec != "" {
			task, err := NewRefreshTotalsTask(userID)
			if err != nil {
				return nil, fmt.Errorf("schedule refresh totals: %w", err)
			}
			out = append(out, CronRegistration{Spec: refreshSpec, Task: task, Options: []asynq.Option{asynq.Queue(QueueDefault), asynq.MaxRetry(3)}})
		}
		if warmupSpec != "" {
			task, err := NewReportsWarmupTask(userID)
			if err != nil {
				return nil, fmt.Errorf("schedule reports warmup: %w", err)
			}
			out = append(out, CronRegistration{Spec: warmupSpec, Task: task, Options: []asynq.Option{asynq.Queue(QueueDefault), asynq.MaxRetry(3)}})
		}
	}
	return out, nil
}
