package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurihiro0119/commit-cadence/internal/aggregator"
	"github.com/kurihiro0119/commit-cadence/internal/api"
	"github.com/kurihiro0119/commit-cadence/internal/config"
	"github.com/kurihiro0119/commit-cadence/internal/logger"
	"github.com/kurihiro0119/commit-cadence/internal/stats"
	"github.com/kurihiro0119/commit-cadence/internal/storage"
	"github.com/kurihiro0119/commit-cadence/internal/storage/postgres"
	"github.com/kurihiro0119/commit-cadence/internal/storage/sqlite"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			logger.Fatal("Failed to initialize PostgreSQL storage", zap.Error(err))
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("Failed to initialize SQLite storage", zap.Error(err))
		}
	}
	defer store.Close()

	scorer, err := stats.NewRegularityScorer(cfg.Regularity)
	if err != nil {
		logger.Fatal("Invalid regularity settings", zap.Error(err))
	}

	// Initialize aggregator
	agg := aggregator.NewAggregator(store,
		aggregator.WithWorkers(cfg.AggregatorWorkers),
		aggregator.WithRegularityScorer(scorer),
	)

	// Setup routes
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRoutes(api.NewHandler(agg, version, cfg.DefaultDays))

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting API server",
			zap.String("addr", addr),
			zap.String("storage", cfg.StorageType),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
