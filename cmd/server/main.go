package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/loadhive/service-shipment/internal/application"
	"github.com/loadhive/service-shipment/internal/config"
	"github.com/loadhive/service-shipment/internal/consumer"
	"github.com/loadhive/service-shipment/internal/handler"
	"github.com/loadhive/service-shipment/internal/rates"
	"github.com/loadhive/service-shipment/internal/repository"
	"github.com/loadhive/service-shipment/internal/routing"
	"github.com/loadhive/service-shipment/pkg/auth"
	"github.com/loadhive/service-shipment/pkg/database"
	"github.com/loadhive/service-shipment/pkg/health"
	"github.com/loadhive/service-shipment/pkg/kafka"
	"github.com/loadhive/service-shipment/pkg/logger"
	"github.com/loadhive/service-shipment/pkg/middleware"
	"github.com/loadhive/service-shipment/pkg/redis"
)

const rateCacheTTL = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-shipment")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-shipment",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.ShipmentModel{},
			&repository.RegionRateModel{},
			&repository.ExtraServiceModel{},
			&repository.VehicleProductModel{},
			&repository.BannerModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Connect to Redis; the rate cache degrades gracefully without it
	var redisClient *redis.Client
	redisClient, err = redis.NewClient(cfg.RedisConfig)
	if err != nil {
		log.Warn("redis unavailable, rate cache disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	// Initialize repositories
	shipmentRepo := repository.NewGormShipmentRepository(db)
	rateRepo := repository.NewGormRateRepository(db)
	extraRepo := repository.NewGormExtraServiceRepository(db)
	vehicleRepo := repository.NewGormVehicleProductRepository(db)
	bannerRepo := repository.NewGormBannerRepository(db)

	// Initialize the cached rate snapshot store
	rateStore := rates.NewStore(rateRepo, extraRepo, redisClient, rateCacheTTL, log)

	// Initialize the routing client
	routingClient := routing.NewClient(cfg.RoutingConfig.BaseURL, cfg.RoutingConfig.Timeout)

	// Initialize application services
	shipmentService := application.NewShipmentService(
		shipmentRepo,
		vehicleRepo,
		rateStore,
		routingClient,
		kafkaProducer,
		log,
	)
	pricingService := application.NewPricingConfigService(rateRepo, extraRepo, vehicleRepo, rateStore, log)
	bannerService := application.NewBannerService(bannerRepo, log)

	// Initialize and start the dispatch event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "shipment-service"
	dispatchConsumer := consumer.NewDispatchEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		shipmentService,
		log,
	)
	defer func() { _ = dispatchConsumer.Close() }()

	go func() {
		log.Info("starting dispatch event consumer")
		if err := dispatchConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("dispatch event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	bannerHandler := handler.NewBannerHandler(bannerService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-shipment")
	healthHandler.RegisterRoutes(router)

	// Register routes
	shipmentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	pricingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	bannerHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-shipment...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-shipment stopped")
}
