package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/trinity-retail/trinity-admin/internal/app"
	"github.com/trinity-retail/trinity-admin/internal/auth"
	"github.com/trinity-retail/trinity-admin/internal/observability"
	"github.com/trinity-retail/trinity-admin/internal/products"
	"github.com/trinity-retail/trinity-admin/internal/session"
	"github.com/trinity-retail/trinity-admin/internal/stats"
	"github.com/trinity-retail/trinity-admin/internal/storefront"
	"github.com/trinity-retail/trinity-admin/internal/users"
	"github.com/trinity-retail/trinity-admin/jobs"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionStore := session.NewStore(redisClient, "trinity_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	clients := storefront.NewFactory(cfg.StorefrontURL, cfg.StorefrontTimeout)

	statsService := stats.NewService(redisClient, cfg.StatsCacheTTL, logger)

	authHandler := auth.NewHandler(logger, clients)
	productsHandler := products.NewHandler(logger, clients)
	usersHandler := users.NewHandler(logger, clients)
	statsHandler := stats.NewHandler(logger, statsService, clients)
	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionStore:    sessionStore,
		AuthHandler:     authHandler,
		ProductsHandler: productsHandler,
		UsersHandler:    usersHandler,
		StatsHandler:    statsHandler,
		JobsHandler:     jobsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
