// Command ecom-relay publishes pending outbox events to Kafka. It is the
// relay half of ecom-standalone, for deployments that scale the API and
// the relay separately.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/ecom/internal/config"
	"github.com/tuanvumaihuynh/ecom/internal/log"
	"github.com/tuanvumaihuynh/ecom/internal/relay"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
	"github.com/tuanvumaihuynh/ecom/internal/storage/mq"
	"github.com/tuanvumaihuynh/ecom/internal/telemetry"
	"github.com/tuanvumaihuynh/ecom/pkg/cmdutil"
)

type relayConfig struct {
	Log      config.Log
	Postgres config.Postgres
	Relay    config.Relay
	Kafka    config.Kafka
	Otel     config.Otel
}

func main() {
	time.Local = time.UTC

	cfg, err := config.New[relayConfig]()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ecom-relay: load config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewSlogLogger(cfg.Log)
	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("ecom-relay exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg relayConfig, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorContext(ctx, "shut down tracer", slog.Any("error", err))
		}
	}()

	pool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	defer pool.Close()

	producer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close()

	dbClient := db.NewClient(pool)
	svc := relay.NewService(cfg.Relay, logger, dbClient, repository.NewOutboxMsgRepository(dbClient), producer)

	stop := svc.Run(ctx)
	logger.InfoContext(ctx, "relay started",
		slog.Uint64("batch_size", uint64(cfg.Relay.BatchSize)),
		slog.Duration("interval", cfg.Relay.Interval),
	)

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "relay stopping")
	stop()
	logger.InfoContext(ctx, "relay stopped")

	return nil
}
