// Package main is the entry point for the discovery API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/zabloncharles/eventportal/internal/api"
	"github.com/zabloncharles/eventportal/internal/config"
	"github.com/zabloncharles/eventportal/internal/discovery"
	"github.com/zabloncharles/eventportal/internal/health"
	"github.com/zabloncharles/eventportal/internal/middleware"
	"github.com/zabloncharles/eventportal/internal/ranking"
	"github.com/zabloncharles/eventportal/internal/store"
	"github.com/zabloncharles/eventportal/internal/tracing"
)

const serviceName = "eventportal-api"

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("EventPortal Discovery API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	logger.Info("configuration loaded", "summary", cfg.LogSummary())

	tracer, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		Protocol:     cfg.OTLPProtocol,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TraceSampleRate,
		InsecureMode: cfg.Env != "production",
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pgSource, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgSource.Close()

	checkers := map[string]health.Checker{
		"database": health.NewDBChecker(pgSource.DB()),
	}

	// Wrap the database source with the Redis snapshot cache when
	// configured. Discovery works without it, just slower.
	var source store.Source = pgSource
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()

		source = store.NewSnapshotCache(pgSource, redisClient,
			time.Duration(cfg.SnapshotTTLSeconds)*time.Second)
		checkers["redis"] = health.NewRedisChecker(redisClient)
	}

	weights, err := ranking.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		// LoadCalibration falls back to defaults; startup continues.
		logger.Warn("using default ranking weights", "error", err)
	}

	registry := prometheus.NewRegistry()

	discoveryMetrics := discovery.NewMetrics()
	if err := discoveryMetrics.Register(registry); err != nil {
		logger.Error("failed to register discovery metrics", "error", err)
		os.Exit(1)
	}

	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}

	coordinator := discovery.NewCoordinator(weights, discoveryMetrics)
	discoveryHandlers := api.NewDiscoveryHandlers(source, coordinator)
	healthHandlers := api.NewHealthHandlers(checkers)

	mux := http.NewServeMux()
	mux.HandleFunc("/discover/events", discoveryHandlers.DiscoverEvents)
	mux.HandleFunc("/discover/groups", discoveryHandlers.DiscoverGroups)
	mux.HandleFunc("/discover/featured", discoveryHandlers.FeaturedEvents)
	mux.HandleFunc("/map/visible", discoveryHandlers.MapVisible)
	mux.HandleFunc("/health", healthHandlers.Health)
	mux.HandleFunc("/ready", healthHandlers.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"eventportal-api","version":"0.0.1"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Middleware order: RequestID -> Logging -> Metrics -> routes.
	var handler http.Handler = mux
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	if tracer.IsEnabled() {
		handler = otelhttp.NewHandler(handler, serviceName)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down tracing", "error", err)
	}

	logger.Info("server stopped")
}
