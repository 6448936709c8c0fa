package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danwidi/erp-ledger-service/config"
	"github.com/danwidi/erp-ledger-service/internal/broker"
	"github.com/danwidi/erp-ledger-service/internal/cache"
	"github.com/danwidi/erp-ledger-service/internal/database"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/search"

	invH "github.com/danwidi/erp-ledger-service/internal/inventory/handler"
	invListenerPkg "github.com/danwidi/erp-ledger-service/internal/inventory/listener"
	invRepoPkg "github.com/danwidi/erp-ledger-service/internal/inventory/repository"
	invUCPkg "github.com/danwidi/erp-ledger-service/internal/inventory/usecase"

	poH "github.com/danwidi/erp-ledger-service/internal/purchase/handler"
	poRepoPkg "github.com/danwidi/erp-ledger-service/internal/purchase/repository"
	poUCPkg "github.com/danwidi/erp-ledger-service/internal/purchase/usecase"

	woH "github.com/danwidi/erp-ledger-service/internal/workorder/handler"
	woRepoPkg "github.com/danwidi/erp-ledger-service/internal/workorder/repository"
	woUCPkg "github.com/danwidi/erp-ledger-service/internal/workorder/usecase"

	metricsH "github.com/danwidi/erp-ledger-service/internal/metrics/handler"
	metricsUCPkg "github.com/danwidi/erp-ledger-service/internal/metrics/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}
	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.NewPostgres(&database.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if err := database.InitSchema(context.Background(), db); err != nil {
		appLogger.Fatal("Could not initialize schema", zap.Error(err))
	}

	// 4. Initialize Repositories
	invRepo := invRepoPkg.NewPGRepository(db)
	poRepo := poRepoPkg.NewPGRepository(db)
	woRepo := woRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer",
		zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 5.8 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (search falls back to SQL)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize UseCases
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, esClient, appLogger)
	poUC := poUCPkg.NewPurchaseUseCase(poRepo, appLogger)
	woUC := woUCPkg.NewWorkOrderUseCase(woRepo, appLogger)
	metricsUC := metricsUCPkg.NewMetricsUseCase(invRepo, poRepo, woRepo, appLogger)

	// 6.5 Initialize Listeners
	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go invListener.Start(ctx)

	// 7. Initialize Handlers and Router
	if !logConfig.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	invH.NewInventoryHandler(invUC, appLogger).RegisterRoutes(api)
	poH.NewPurchaseHandler(poUC, appLogger).RegisterRoutes(api)
	woH.NewWorkOrderHandler(woUC, appLogger).RegisterRoutes(api)
	metricsH.NewMetricsHandler(metricsUC, appLogger).RegisterRoutes(api)

	// 8. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	server := &http.Server{
		Addr:    port,
		Handler: router,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
