package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/trinity-retail/trinity-admin/internal/app"
	"github.com/trinity-retail/trinity-admin/internal/platform/cache"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/stats"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
	"github.com/trinity-retail/trinity-admin/jobs"
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

	if cfg.StorefrontServiceToken == "" {
		logger.Info("no storefront service token configured, worker has nothing to do")
		return
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	statsService := stats.NewService(redisClient, cfg.StatsCacheTTL, logger)
	serviceClient := storefront.NewFactory(cfg.StorefrontURL, cfg.StorefrontTimeout).
		For(session.NewMemoryTokenStore(cfg.StorefrontServiceToken))

	warmupJob := jobs.NewStatsWarmupJob(statsService, serviceClient, logger, nil)

	warmupTask, err := jobs.NewStatsWarmupTask(jobs.StatsWarmupPayload{Force: true})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStatsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
