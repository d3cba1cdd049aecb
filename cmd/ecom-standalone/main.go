package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/ecom/internal/config"
	"github.com/tuanvumaihuynh/ecom/internal/event"
	"github.com/tuanvumaihuynh/ecom/internal/http"
	"github.com/tuanvumaihuynh/ecom/internal/log"
	"github.com/tuanvumaihuynh/ecom/internal/relay"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/service"
	"github.com/tuanvumaihuynh/ecom/internal/storage/cache"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
	"github.com/tuanvumaihuynh/ecom/internal/storage/mq"
	"github.com/tuanvumaihuynh/ecom/internal/telemetry"
	"github.com/tuanvumaihuynh/ecom/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Redis    config.Redis
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	if cfg.Postgres.AutoMigrate {
		if err := db.Migrate(pgxPool); err != nil {
			return fmt.Errorf("error migrating database: %w", err)
		}
		logger.InfoContext(ctx, "database schema is up to date")
	}

	dbClient := db.NewClient(pgxPool)

	var productCache cache.ProductCache = cache.NoopProductCache{}
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("error creating redis client: %w", err)
		}
		defer redisClient.Close()

		productCache = cache.NewRedisProductCache(redisClient, cfg.Redis.TTL)
	} else {
		logger.InfoContext(ctx, "redis address not set, product cache disabled")
	}

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	productRepository := repository.NewProductRepository(dbClient)
	userRepository := repository.NewUserRepository(dbClient)
	cartRepository := repository.NewCartRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	productService := service.NewProductService(logger, dbClient, productRepository, outboxMsgRepository, productCache)
	userService := service.NewUserService(dbClient, userRepository)
	cartService := service.NewCartService(logger, dbClient, productRepository, userRepository, cartRepository, outboxMsgRepository)

	httpService, err := http.New(cfg.HTTP, logger, dbClient, productService, userService, cartService)
	if err != nil {
		return fmt.Errorf("error creating http service: %w", err)
	}

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer, productCache)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		cleanup, err := httpService.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
