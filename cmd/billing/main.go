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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/app"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/invoices"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/ledger"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/masterdata"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/observability"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/platform/db"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/quotations"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/sequence"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
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
	logger.Info("tenant registry loaded", slog.Int("companies", len(registry.All())))

	metrics := observability.NewMetrics()

	pools := tenant.NewPools(tenant.PoolsConfig{
		Registry:       registry,
		Logger:         logger,
		Metrics:        metrics,
		AcquireTimeout: cfg.DBAcquireTimeout,
		DBOptions: db.Options{
			MaxConns:       cfg.DBMaxConns,
			ConnectTimeout: cfg.DBConnectTimeout,
			IdleTimeout:    cfg.DBIdleTimeout,
		},
	})
	defer pools.CloseAll()

	var locker *sequence.Locker
	if cfg.SequenceLocking {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping", slog.Any("error", err))
			os.Exit(1)
		}
		locker = sequence.NewLocker(redisClient)
		logger.Info("sequence locking enabled", slog.String("redis", cfg.RedisAddr))
	}

	invoiceService := invoices.NewService(invoices.NewRepository(pools), registry, locker, metrics, logger)
	quotationService := quotations.NewService(quotations.NewRepository(pools), registry, locker, metrics, logger)
	ledgerService := ledger.NewService(ledger.NewRepository(pools))
	masterdataService := masterdata.NewService(masterdata.NewRepository(pools))

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Registry:          registry,
		InvoiceHandler:    invoices.NewHandler(logger, invoiceService),
		QuotationHandler:  quotations.NewHandler(logger, quotationService),
		LedgerHandler:     ledger.NewHandler(logger, ledgerService),
		MasterDataHandler: masterdata.NewHandler(logger, masterdataService),
		Metrics:           metrics,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
}
