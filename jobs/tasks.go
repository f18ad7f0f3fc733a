package jobs

import (
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRefreshTotals recomputes and persists the totals of every declaration of a user.
	TaskRefreshTotals = "declarations:refresh_totals"
	// TaskReportsWarmup precomputes the liasse cache of a user's declarations.
	TaskReportsWarmup = "reports:warmup"
)

var errMissingUser = errors.New("jobs: user id required")

// RefreshTotalsPayload identifies whose declarations to refresh.
type RefreshTotalsPayload struct {
	UserID string `json:"user_id"`
}

// ReportsWarmupPayload lists the declarations to warm. An empty list means all
// declarations of the user.
type ReportsWarmupPayload struct {
	UserID         string   `json:"user_id"`
	DeclarationIDs []string `json:"declaration_ids,omitempty"`
}

// NewRefreshTotalsTask constructs a TaskRefreshTotals task.
func NewRefreshTotalsTask(userID string) (*asynq.Task, error) {
	if userID == "" {
		return nil, errMissingUser
	}
	data, err := json.Marshal(RefreshTotalsPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefreshTotals, data), nil
}

// NewReportsWarmupTask constructs a TaskReportsWarmup task.
func NewReportsWarmupTask(userID string, declarationIDs ...string) (*asynq.Task, error) {
	if userID == "" {
		return nil, errMissingUser
	}
	data, err := json.Marshal(ReportsWarmupPayload{UserID: userID, DeclarationIDs: declarationIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
