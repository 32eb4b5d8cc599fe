package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/config"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/domain"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/handler"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/cache"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/client"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/observability"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/resilience"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/port"
	"github.com/nivelo/crm-dashboard-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("crm_api_url", cfg.CRMAPIURL),
		zap.Bool("fast_path_enabled", cfg.AnalyticsAPIURL != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "crm-dashboard-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	resultCache := cache.New[*domain.AnalyticsResult](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("crm-api")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	recordsClient := client.NewRecordsClient(httpClient, cfg.CRMAPIURL, cb, resilienceCfg, bulkhead)

	var fastPath port.AnalyticsFetcher
	if cfg.AnalyticsAPIURL != "" {
		logger.Info("fast path enabled", zap.String("analytics_api_url", cfg.AnalyticsAPIURL))
		fastPath = client.NewAnalyticsClient(httpClient, cfg.AnalyticsAPIURL, cb, resilienceCfg)
	} else {
		logger.Info("fast path disabled, all analytics computed locally")
	}

	// --- Services ---
	dashboardSvc := service.NewDashboardService(
		recordsClient,
		fastPath,
		resultCache,
		metrics,
		logger,
	)

	var authSvc *service.AuthService
	if cfg.JWTSecret != "" {
		authSvc = service.NewAuthService(cfg.JWTSecret, logger)
		logger.Info("auth enabled, /v1 routes require a bearer token")
	} else {
		logger.Warn("JWT_SECRET not set, /v1 routes are open")
	}

	// --- Router ---
	router := handler.NewRouter(dashboardSvc, authSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
