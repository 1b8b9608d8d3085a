package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/handlers"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/redis"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New("restaurant-pos", cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Error("startup", "Failed to connect to database", err)
		os.Exit(1)
	}

	// Redis backs the kitchen board cache and payment idempotency. Both are
	// optional.
	var (
		kitchen     services.KitchenCache
		idempotency handlers.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL, cfg.KitchenCacheTTL, cfg.IdempotencyTTL)
		if err != nil {
			log.Error("startup", "Failed to connect to Redis", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		kitchen = redisClient
		idempotency = redisClient
	} else {
		log.Warn("startup", "REDIS_URL not set, kitchen cache and idempotency keys disabled")
	}

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := messaging.Dial(cfg.RabbitMQURL, log)
		if err != nil {
			log.Error("startup", "Failed to connect to RabbitMQ", err)
			os.Exit(1)
		}
		publisher := messaging.NewPublisher(conn, log)
		defer publisher.Close()
		events = publisher
	} else {
		log.Warn("startup", "RABBITMQ_URL not set, sale events will not be published")
	}

	// Initialize repositories and services
	repos := repository.NewRepositories(db)

	stockService := services.NewStockService(repos, log)
	cashService := services.NewCashRegisterService(repos, log)
	crmService := services.NewCRMService(repos)
	processor := services.NewSideEffectProcessor(repos, stockService, cashService, crmService, events, services.ProcessorConfig{
		Interval:    cfg.OutboxInterval,
		MaxAttempts: cfg.OutboxMaxAttempts,
		BatchSize:   cfg.OutboxBatchSize,
	}, log)

	router := handlers.NewRouter(handlers.Services{
		Orders:       services.NewOrderService(repos, kitchen, processor, log),
		Sales:        services.NewSaleService(repos, kitchen, processor, log),
		Tables:       services.NewTableService(repos),
		Reservations: services.NewReservationService(repos, log),
		Stock:        stockService,
		CRM:          crmService,
		CashRegister: cashService,
		Reports:      services.NewReportService(repos.Sales),
		Users:        services.NewUserService(repos.Users),
		Idempotency:  idempotency,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	processorDone := make(chan struct{})
	go func() {
		defer close(processorDone)
		processor.Start(ctx)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("startup", "Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("startup", "Failed to start server", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown", "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "Server forced to shutdown", err)
	}
	<-processorDone

	log.Info("shutdown", "Server exited")
}
