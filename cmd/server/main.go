package main

import (
	"context"
	"log"
	"log/slog"

	"sinistro-backend/config"
	"sinistro-backend/handlers"
	"sinistro-backend/metrics"
	"sinistro-backend/repository"
	"sinistro-backend/service"
	"sinistro-backend/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx := context.Background()

	// Initialize claim store
	var store service.ClaimStore
	switch cfg.StoreType {
	case config.StoreTypeMemory:
		store = repository.NewMemoryClaimStore()
		logger.Warn("using in-memory claim store; data is lost on restart")
	default:
		db, err := initPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to initialize Postgres:", err)
		}
		defer db.Close()
		store = repository.NewClaimRepository(db)
	}

	if cfg.RedisURL != "" {
		client, err := initRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to initialize Redis:", err)
		}
		defer client.Close()
		store = repository.NewCachedClaimStore(store, client, cfg.ClaimCacheTTL, logger)
		logger.Info("claim cache enabled", "ttl", cfg.ClaimCacheTTL)
	}

	// Initialize document storage
	blobs, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("document storage initialized", "type", cfg.Storage.Type)

	claimMetrics := metrics.New(prometheus.DefaultRegisterer)

	opts := []service.ClaimServiceOption{
		service.WithClaimStore(store),
		service.WithMetrics(claimMetrics),
		service.WithLogger(logger),
		service.WithMaxDocumentSize(cfg.MaxDocumentSize),
	}
	if blobs != nil {
		opts = append(opts, service.WithBlobStorage(blobs))
	}
	claimService := service.NewClaimService(opts...)

	claimHandler := handlers.NewClaimHandler(claimService, logger)
	r := handlers.NewRouter(claimHandler, promhttp.Handler(), logger)

	logger.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("postgres connection established")
	return pool, nil
}

func initRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
