// Package main provides the entrypoint for the RouteWeaver background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/directions/openrouteservice"
	"github.com/routeweaver/routeweaver/internal/history"
	"github.com/routeweaver/routeweaver/internal/legcache"
	"github.com/routeweaver/routeweaver/internal/matrix"
	"github.com/routeweaver/routeweaver/internal/provider/resilience"
	"github.com/routeweaver/routeweaver/internal/solve"
	"github.com/routeweaver/routeweaver/internal/solver/vroom"
	"github.com/routeweaver/routeweaver/internal/telemetry"
	"github.com/routeweaver/routeweaver/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "routeweaver-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RouteWeaver worker")

	// Worker also exposes a health endpoint for Cloud Run.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	orsAPIKey := os.Getenv("ORS_API_KEY")
	if orsAPIKey == "" {
		log.Fatal().Msg("ORS_API_KEY is required")
	}

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatal().Msg("GOOGLE_CLOUD_PROJECT is required")
	}

	subscription := os.Getenv("SOLVE_SUBSCRIPTION")
	if subscription == "" {
		subscription = "solve-jobs"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	solveMetrics, err := telemetry.NewSolveMetrics(telemetry.Meter(serviceName))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize solve metrics")
	}

	var historyRepo history.Repository
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		historyRepo = history.NewPostgresRepository(pool)
		log.Info().Msg("solve history backed by postgres")
	} else {
		historyRepo = history.NewInMemoryRepository()
		log.Warn().Msg("DATABASE_URL not set, solve history is in-memory only")
	}

	// Matrix warming only pays off with a shared cache, so the worker wants
	// Redis far more than the API does.
	var cache matrix.LegCache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		cache = legcache.NewRedisCache(legcache.RedisCacheConfig{
			Client: redisClient,
			Logger: log,
		})
		log.Info().Str("addr", redisAddr).Msg("leg cache backed by redis")
	} else {
		cache = legcache.NewMemoryCache()
		log.Warn().Msg("REDIS_ADDR not set, warmed legs will not outlive this process")
	}

	providers := resilience.NewRegistry()

	orsClient := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:   orsAPIKey,
		BaseURL:  os.Getenv("ORS_BASE_URL"),
		Registry: providers,
		Logger:   log,
	})

	gateway := directions.NewGateway(directions.GatewayConfig{
		Provider: orsClient,
		Logger:   log,
	})

	builder := matrix.NewBuilder(matrix.BuilderConfig{
		Gateway: gateway,
		Cache:   cache,
		Logger:  log,
	})

	vroomClient := vroom.NewClient(vroom.ClientConfig{
		BaseURL:  os.Getenv("VROOM_URL"),
		Registry: providers,
		Logger:   log,
	})

	solveService := solve.NewService(solve.ServiceConfig{
		Builder: builder,
		Solver:  vroomClient,
		History: historyRepo,
		Metrics: solveMetrics,
		Logger:  log,
	})

	job := worker.NewSolveJob(worker.SolveJobConfig{
		Service: solveService,
		Logger:  log,
	})

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscription,
		Job:              job,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub client")
		}
	}()

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Receive blocks until the context is cancelled.
	go func() {
		log.Info().
			Str("subscription", subscription).
			Msg("worker receiving")
		if err := handler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub receive stopped")
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
