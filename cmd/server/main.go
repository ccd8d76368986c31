package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/singladno/marinaobuv-sub001/config"
	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/singladno/marinaobuv-sub001/pkg/broker"
	"github.com/singladno/marinaobuv-sub001/pkg/cache"
	"github.com/singladno/marinaobuv-sub001/pkg/database"
	"github.com/singladno/marinaobuv-sub001/pkg/i18n"
	"github.com/singladno/marinaobuv-sub001/pkg/logger"
	"github.com/singladno/marinaobuv-sub001/pkg/middleware"
	"github.com/singladno/marinaobuv-sub001/pkg/search"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	catH "github.com/singladno/marinaobuv-sub001/internal/category/handler"
	catListenerPkg "github.com/singladno/marinaobuv-sub001/internal/category/listener"
	catRepoPkg "github.com/singladno/marinaobuv-sub001/internal/category/repository"
	catUCPkg "github.com/singladno/marinaobuv-sub001/internal/category/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 1.5 Initialize i18n
	if err := i18n.Init(); err != nil {
		log.Fatalf("failed to load locales: %v", err)
	}
	if cfg.Server.I18nDir != "" {
		files, _ := filepath.Glob(filepath.Join(cfg.Server.I18nDir, "*.json"))
		for _, f := range files {
			if err := i18n.Load(f); err != nil {
				log.Printf("Failed to load locale %s: %v", f, err)
			}
		}
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database
	db, err := database.Open(ctx, &database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.ConnectionString(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		applied, err := database.ApplyMigrations(ctx, db)
		if err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
		appLogger.Info("Migrations applied", zap.Strings("versions", applied))
	}

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewSQLRepository(db)

	// 5. Initialize Redis
	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5.5 Initialize Kafka
	instanceID := cfg.Kafka.ClientID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	var (
		kafkaConsumer *broker.KafkaConsumer
		publisher     catUCPkg.EventPublisher
	)
	if cfg.Kafka.Enabled {
		brokerCfg := &broker.Config{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			GroupID:  cfg.Kafka.GroupID,
			ClientID: instanceID,
		}
		kafkaConsumer = broker.NewConsumer(brokerCfg)
		defer kafkaConsumer.Close()
		producer := broker.NewProducer(brokerCfg)
		defer producer.Close()
		publisher = producer
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 5.8 Initialize Elasticsearch
	var esIndex catUCPkg.SearchIndex
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (category search falls back to in-memory filtering)", zap.Error(err))
		} else {
			esIndex = esClient
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Initialize UseCases
	parentMode, err := tree.ParseParentMode(cfg.Category.ParentMode)
	if err != nil {
		appLogger.Fatal("Invalid CATEGORY_PARENT_MODE", zap.Error(err))
	}
	locale, err := language.Parse(cfg.Category.Locale)
	if err != nil {
		appLogger.Warn("Invalid CATEGORY_LOCALE, using root collation", zap.String("locale", cfg.Category.Locale), zap.Error(err))
		locale = language.Und
	}
	catUC := catUCPkg.NewCategoryUseCase(catRepo, redisClient, esIndex, publisher, appLogger, catUCPkg.Options{
		ParentMode:  parentMode,
		ExpandDepth: cfg.Category.ExpandDepth,
		CacheTTL:    cfg.Category.CacheTTL,
		Locale:      locale,
	})

	// 6.5 Initialize Listeners
	if kafkaConsumer != nil {
		catListener := catListenerPkg.NewCatalogListener(kafkaConsumer, catUC, appLogger, instanceID)
		go catListener.Start(ctx)
	}

	// 7. Start gRPC Server
	grpcPort := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", grpcPort)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.ContextInterceptor(),
			middleware.LoggingInterceptor(appLogger),
		),
	)
	catH.RegisterCategoryTreeServer(grpcServer, catH.NewCategoryTreeHandler(catUC, appLogger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(catH.ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC server", zap.String("port", grpcPort))
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	// 8. Start HTTP Server
	checks := map[string]catH.HealthCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
	}
	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           catH.NewRouter(catH.NewHTTPHandler(catUC, appLogger), appLogger, checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()

	// Servers no longer accept writes; let queued index syncs and events finish.
	if err := catUC.Drain(shutdownCtx); err != nil {
		appLogger.Warn("Background category work did not finish", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
