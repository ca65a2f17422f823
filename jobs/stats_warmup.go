package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/trinity-retail/trinity-admin/internal/jobs"
	"github.com/trinity-retail/trinity-admin/internal/stats"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// StatsWarmupJob refreshes the dashboard cache ahead of admin traffic. It
// authenticates against the storefront with a service token rather than a
// browser session.
type StatsWarmupJob struct {
	Stats   *stats.Service
	Client  *storefront.Client
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewStatsWarmupJob wires dependencies for the warmup handler.
func NewStatsWarmupJob(statsSvc *stats.Service, client *storefront.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatsWarmupJob {
	return &StatsWarmupJob{Stats: statsSvc, Client: client, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *StatsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Stats == nil || j.Client == nil {
		return errors.New("stats warmup: handler not configured")
	}
	var payload StatsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskStatsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting dashboard warmup", slog.Bool("force", payload.Force))

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	if payload.Force {
		_, resultErr = j.Stats.Refresh(runCtx, j.Client)
	} else {
		_, resultErr = j.Stats.Dashboard(runCtx, j.Client)
	}
	if resultErr != nil {
		logger.Error("dashboard warmup failed", slog.Any("error", resultErr))
		return resultErr
	}

	logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *StatsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStatsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskStatsWarmup))
}

func (j *StatsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
