package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/sicofin/sicofin/internal/app"
	"github.com/sicofin/sicofin/internal/balances"
	balancescache "github.com/sicofin/sicofin/internal/balances/cache"
	"github.com/sicofin/sicofin/internal/balances/rates"
	balancesstore "github.com/sicofin/sicofin/internal/balances/store"
	"github.com/sicofin/sicofin/internal/catalog"
	jobmetrics "github.com/sicofin/sicofin/internal/jobs"
	platformcache "github.com/sicofin/sicofin/internal/platform/cache"
	"github.com/sicofin/sicofin/internal/platform/db"
	"github.com/sicofin/sicofin/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := platformcache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	charts := catalog.NewRepository(pool)
	resolver := rates.NewResolver(rates.NewPgSource(pool), cfg.RateLookbackDays)
	store := balancesstore.New(pool)
	engine := balances.NewEngine(store, resolver, charts, logger)
	reportCache := balancescache.New(redisClient, cfg.ReportCacheTTL)

	warmupJob := jobs.NewBalancesWarmupJob(engine, reportCache, logger, jobmetrics.NewMetrics(nil))

	var cron []jobs.CronRegistration
	if cfg.DefaultChartUID != "" {
		warmupTask, err := jobs.NewBalancesWarmupTask(jobs.BalancesWarmupPayload{
			AccountsChartUID: cfg.DefaultChartUID,
		})
		if err != nil {
			logger.Error("build warmup task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec: "30 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBalancesWarmup, Handler: warmupJob.Handle},
		},
		Cron: cron,
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
