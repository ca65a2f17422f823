package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarmup is the task type for refreshing the dashboard cache.
	TaskStatsWarmup = "stats:warmup"
)

// StatsWarmupPayload configures a dashboard warmup run.
type StatsWarmupPayload struct {
	// Force refreshes the cache even when a fresh entry exists.
	Force bool `json:"force"`
}

// NewStatsWarmupTask constructs an Asynq task for a dashboard warmup.
func NewStatsWarmupTask(payload StatsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, data), nil
}
