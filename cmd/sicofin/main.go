package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sicofin/sicofin/internal/app"
	"github.com/sicofin/sicofin/internal/balances"
	balancescache "github.com/sicofin/sicofin/internal/balances/cache"
	balanceshttp "github.com/sicofin/sicofin/internal/balances/http"
	"github.com/sicofin/sicofin/internal/balances/rates"
	balancesstore "github.com/sicofin/sicofin/internal/balances/store"
	"github.com/sicofin/sicofin/internal/catalog"
	"github.com/sicofin/sicofin/internal/observability"
	platformcache "github.com/sicofin/sicofin/internal/platform/cache"
	"github.com/sicofin/sicofin/internal/platform/db"
	"github.com/sicofin/sicofin/jobs"
	"github.com/sicofin/sicofin/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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

	metrics := observability.NewMetrics()

	charts := catalog.NewRepository(pool)
	resolver := rates.NewResolver(rates.NewPgSource(pool), cfg.RateLookbackDays)
	store := balancesstore.New(pool)
	engine := balances.NewEngine(store, resolver, charts, logger)

	reportCache := balancescache.New(redisClient, cfg.ReportCacheTTL)
	go func() {
		if err := reportCache.ListenForInvalidation(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}
	}()

	balancesHandler := balanceshttp.NewHandler(engine, reportCache, metrics, logger)
	reportHandler := report.NewHandler(report.NewClient(cfg.GotenbergURL), engine, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		BalancesHandler: balancesHandler,
		ReportHandler:   reportHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
