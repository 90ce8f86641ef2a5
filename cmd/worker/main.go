package main

import (
	"context"
	"net"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xpay/internal/audit"
	"github.com/vultisig/xpay/internal/graceful"
	"github.com/vultisig/xpay/internal/logging"
	"github.com/vultisig/xpay/internal/metrics"
)

func main() {
	ctx := context.Background()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)

	metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceWorker}, logger)
	defer func() {
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Errorf("failed to stop metrics server: %v", err)
		}
	}()

	pgPool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to initialize Postgres pool: %v", err)
	}
	defer pgPool.Close()

	store := audit.NewPostgresStore(pgPool)
	err = store.Migrate(ctx)
	if err != nil {
		logger.Fatalf("failed to migrate audit storage: %v", err)
	}

	redisOptions := asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	consumer := asynq.NewServer(
		redisOptions,
		asynq.Config{
			Logger:      logger,
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				audit.QueueName: 10,
			},
		},
	)

	handler := audit.NewHandler(store, metrics.NewWorkerMetrics(), logger)

	graceful.OnSignal(logger, consumer.Shutdown)

	mux := asynq.NewServeMux()
	mux.HandleFunc(audit.TypeTransferCreated, handler.Handle)
	err = consumer.Run(mux)
	if err != nil {
		logger.Fatalf("failed to run consumer: %v", err)
	}
}
