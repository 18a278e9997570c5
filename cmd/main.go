package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"insurance-pricing-service/internal/api"
	"insurance-pricing-service/internal/cache"
	"insurance-pricing-service/internal/catalog"
	"insurance-pricing-service/internal/config"
	"insurance-pricing-service/internal/consumer"
	"insurance-pricing-service/internal/events"
	"insurance-pricing-service/internal/repository"
	"insurance-pricing-service/internal/resolver"
	"insurance-pricing-service/internal/service"
	"insurance-pricing-service/internal/sharding"
	"insurance-pricing-service/migrations"
)

// memoryDSN keeps everything in process, for local runs without MySQL.
const memoryDSN = "memory"

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				return db, nil
			}
		}
		log.Warn().Err(err).Msgf("Retry %d: failed to connect to DB", i+1)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB after retries: %w", err)
}

type stores struct {
	configurations service.ConfigurationStore
	pricingTypes   service.PricingTypeStore
	roadServices   service.RoadServiceStore
}

func openStores(cfg *config.Config) (stores, error) {
	if len(cfg.MySQLDSNs) == 1 && cfg.MySQLDSNs[0] == memoryDSN {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return stores{configurations: mem, pricingTypes: mem, roadServices: mem}, nil
	}

	shards := make([]*sql.DB, 0, len(cfg.MySQLDSNs))
	for _, dsn := range cfg.MySQLDSNs {
		db, err := connectDB(dsn)
		if err != nil {
			return stores{}, err
		}
		shards = append(shards, db)
	}
	log.Info().Msgf("Connected to %d DB shards", len(shards))

	if err := migrations.AutoMigrate(cfg.MigrationRetries, shards...); err != nil {
		return stores{}, fmt.Errorf("failed to migrate: %w", err)
	}

	router := sharding.NewShardRouter(len(shards))
	return stores{
		configurations: repository.NewPricingRepository(shards, router),
		// pricing types are global, the first shard owns them
		pricingTypes: repository.NewPricingTypeRepository(shards[0]),
		roadServices: repository.NewRoadServiceRepository(shards, router),
	}, nil
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	configCache := cache.NewConfigurationCache(rdb, cfg.CacheTTL)

	kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer kafkaWriter.Close()
	publisher := events.NewPublisher(kafkaWriter)

	pricingCatalog, err := catalog.New(catalog.DefaultCategories())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pricing type catalog")
	}

	pricingTypeService := service.NewPricingTypeService(st.pricingTypes, pricingCatalog, catalog.DefaultCategories(), publisher)
	if _, err := pricingTypeService.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize pricing types")
	}

	roadServiceService := service.NewRoadServiceService(st.roadServices, publisher)
	pricingResolver := resolver.New(pricingCatalog, roadServiceService)
	pricingService := service.NewPricingService(st.configurations, configCache, pricingCatalog, pricingResolver, publisher)
	pricingHandler := api.NewPricingHandler(pricingService, pricingTypeService, roadServiceService)

	kafkaReader := config.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	catalogConsumer := consumer.NewConsumer(kafkaReader, pricingTypeService)
	go catalogConsumer.Start(ctx)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))
	e.Use(api.AuthMiddleware(cfg.JWTSecret, cfg.TokenPrefix))

	e.GET(api.HealthPath, pricingHandler.Health)
	pricingHandler.Register(e.Group(""))

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}
}
