package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/app"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/observability"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/platform/db"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	registry, err := tenant.LoadRegistry(cfg.TenantsFile)
	if err != nil {
		logger.Error("load tenant registry", slog.Any("error", err))
		os.Exit(1)
	}

	pools := tenant.NewPools(tenant.PoolsConfig{
		Registry:       registry,
		Logger:         logger,
		Metrics:        observability.NewMetrics(),
		AcquireTimeout: cfg.DBAcquireTimeout,
		DBOptions: db.Options{
			MaxConns:       cfg.DBMaxConns,
			ConnectTimeout: cfg.DBConnectTimeout,
			IdleTimeout:    cfg.DBIdleTimeout,
		},
	})
	defer pools.CloseAll()

	integrityTask, err := jobs.NewLedgerIntegrityTask(jobs.ScanPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	auditTask, err := jobs.NewSequenceAuditTask(jobs.ScanPayload{})
	if err != nil {
		logger.Error("build audit task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: jobs.NewLedgerIntegrityHandler(pools, registry, logger)},
			{Type: jobs.TaskSequenceAudit, Handler: jobs.NewSequenceAuditHandler(pools, registry, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: auditTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
