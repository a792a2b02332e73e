package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webhook-ingest-gateway/config"
	httpHandler "webhook-ingest-gateway/internal/adapter/http/handler"
	pgStorage "webhook-ingest-gateway/internal/adapter/storage/postgres"
	redisStorage "webhook-ingest-gateway/internal/adapter/storage/redis"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/internal/service"
	"webhook-ingest-gateway/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("batching", cfg.Batch.Enabled).
		Msg("Starting Webhook Ingest Gateway")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	eventRepo := pgStorage.NewEventRepo(pool)
	deliveryRepo := pgStorage.NewDeliveryRepo(pool)
	configRepo := pgStorage.NewConfigurationRepo(pool)
	queryRepo := pgStorage.NewQueryRepo(pool)

	// Initialize core services
	tokenSvc := service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	tracker := service.NewTrackerService(deliveryRepo, log)
	normalizer := service.NewNormalizer()

	// Batched mode: the accumulator owns the flush lifecycle; the ingest
	// service only appends. Direct mode: no accumulator at all.
	var accumulator *service.BatchAccumulator
	if cfg.Batch.Enabled {
		accumulator = service.NewBatchAccumulator(eventRepo, cfg.Batch.Size, cfg.Batch.FlushInterval, log)
		accumulator.Start()
		log.Info().
			Int("batch_size", cfg.Batch.Size).
			Dur("flush_interval", cfg.Batch.FlushInterval).
			Msg("Batch accumulator started")
	}

	var ingestSvc ports.IngestService
	if accumulator != nil {
		ingestSvc = service.NewIngestService(normalizer, eventRepo, tracker, accumulator, log)
	} else {
		ingestSvc = service.NewIngestService(normalizer, eventRepo, tracker, nil, log)
	}

	querySvc := service.NewQueryService(queryRepo)
	configSvc := service.NewConfigurationService(configRepo)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		IngestSvc:      ingestSvc,
		QuerySvc:       querySvc,
		ConfigSvc:      configSvc,
		TokenSvc:       tokenSvc,
		APIKey:         cfg.Auth.APIKey,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Drain the accumulator after the listener stops accepting work, so
	// every acknowledged event gets its final flush.
	if accumulator != nil {
		if err := accumulator.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Final batch flush failed, buffered events lost")
		} else {
			log.Info().Msg("Batch accumulator drained")
		}
	}

	log.Info().Msg("Server exited")
}
