package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hazelmart/internal/app/store/config"
	"hazelmart/internal/app/store/handler"
	"hazelmart/internal/app/store/repository"
	"hazelmart/internal/app/store/service"
	"hazelmart/internal/app/store/util"
	"hazelmart/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("hazelmart", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "hazelmart", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Кеш каталога опционален: без Redis сервис работает, просто медленнее
	cache, err := util.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, catalog cache disabled")
		cache = nil
	} else {
		defer cache.Close()
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	authService := service.NewAuthService(userRepo)
	reviewService := service.NewReviewService(reviewRepo, productRepo, userRepo, kafkaProducer, cache)
	productService := service.NewProductService(productRepo, reviewRepo, cache)
	userService := service.NewUserService(userRepo, reviewRepo, reviewService)

	reconciler := service.NewRatingReconciler(productRepo, reviewService, cfg.App.ReconcileSchedule)
	if err := reconciler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start rating reconciler")
	}
	defer reconciler.Stop()

	tokenManager := util.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	cookieSigner := util.NewCookieSigner(cfg.JWT.Secret)
	sessions := handler.NewSessionWriter(tokenManager, cookieSigner, cfg.App.IsProduction())
	authMiddleware := handler.NewAuthMiddleware(tokenManager, cookieSigner)

	authHandler := handler.NewAuthHandler(authService, sessions)
	userHandler := handler.NewUserHandler(userService, sessions)
	productHandler := handler.NewProductHandler(productService)
	reviewHandler := handler.NewReviewHandler(reviewService)

	router := handler.SetupRoutes(authHandler, userHandler, productHandler, reviewHandler, authMiddleware, cfg.App.APIVersion)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Hazelmart")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Hazelmart...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Hazelmart stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pingCancel()

			if err = client.Ping(pingCtx, nil); err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
