package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/consumer"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/repository/memory"
	"storefront/internal/service"
	"storefront/migrations"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Prices go out as JSON numbers, as the storefront frontend expects.
	decimal.MarshalJSONWithoutQuotes = true

	var (
		productRepo  service.ProductStore
		orderRepo    service.OrderStore
		productCache service.ProductCache
		idempotency  service.IdempotencyStore
		cartStorage  cart.Storage
		publisher    service.OrderPublisher
	)

	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		productRepo, orderRepo = store, store
		log.Info().Msg("Using in-memory storage")
	default:
		db, err := config.ConnectMySQL(cfg.MySQL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MySQL")
		}
		defer db.Close()

		if err := migrations.AutoMigrate(cfg.MySQL.MigrateRetries, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate tables")
		}
		productRepo = repository.NewProductRepository(db)
		orderRepo = repository.NewOrderRepository(db)
	}

	if cfg.Redis.Addr != "" && cfg.Storage != config.StorageMemory {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		productCache = cache.NewProductCache(rdb, cfg.Redis.ProductTTL)
		idempotency = cache.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		cartStorage = cache.NewCartStorage(rdb, cfg.Redis.CartTTL)
	} else {
		idempotency = memory.NewIdempotencyStore()
		cartStorage = memory.NewCartStorage()
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.KafkaEnabled() && cfg.Storage != config.StorageMemory {
		kafkaWriter := cfg.NewKafkaWriter(cfg.Kafka.OrderTopic)
		defer kafkaWriter.Close()
		publisher = events.NewPublisher(kafkaWriter)

		if productCache != nil {
			orderConsumer := consumer.NewConsumer(cfg.NewKafkaReader(cfg.Kafka.OrderTopic), productCache)
			go orderConsumer.Run(consumerCtx)
		}
	}

	productService := service.NewProductService(productRepo, productCache)
	orderService := service.NewOrderService(orderRepo, productRepo, productCache, idempotency, publisher)
	cartService := service.NewCartService(cart.NewStore(cartStorage), productService, orderService)

	e := api.NewServer(api.Services{
		Products: productService,
		Orders:   orderService,
		Carts:    cartService,
	}, metrics.NewServerMetrics("api"), cfg.Limiter)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
}
