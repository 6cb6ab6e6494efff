// Insights API server entry point
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/flashcart/insights/internal/cache"
	"github.com/flashcart/insights/internal/config"
	"github.com/flashcart/insights/internal/observability"
	"github.com/flashcart/insights/internal/server"
	"github.com/flashcart/insights/internal/store"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config", zap.Error(err))
	}

	logger.Info("Starting Flashcart Insights",
		zap.String("version", cfg.Version),
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.String("chargebacks_csv", cfg.Data.ChargebacksPath),
		zap.String("transactions_csv", cfg.Data.TransactionsPath),
	)

	// Tracing
	_, tracerCloser, err := observability.InitTracer(observability.TracerConfig{
		ServiceName:    "flashcart-insights",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		Enabled:        cfg.Tracing.Enabled,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer tracerCloser.Close()

	// Metrics
	metrics := observability.NewMetrics("insights", "api")
	metrics.StartUptimeTracking(time.Now())

	// Load both tables before accepting traffic so the first request is
	// never slow and a bad CSV fails the deployment, not a request.
	st := store.New(cfg.Data.ChargebacksPath, cfg.Data.TransactionsPath, logger)
	if err := st.Load(); err != nil {
		logger.Fatal("Failed to load data", zap.Error(err))
	}
	chargebacks, _ := st.Chargebacks()
	transactions, _ := st.Transactions()
	metrics.SetRecordsLoaded("chargebacks", len(chargebacks))
	metrics.SetRecordsLoaded("transactions_daily", len(transactions))

	// Optional Redis report cache
	var redisClient *cache.RedisClient
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedisClient(cache.CacheConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			PoolSize: cfg.Cache.PoolSize,
		})
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		logger.Info("Report cache enabled", zap.String("addr", cfg.Cache.Addr))
	}

	apiServer := server.New(cfg, logger, st, redisClient, metrics)

	httpServer := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
