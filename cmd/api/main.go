// Package main provides the entrypoint for the RouteWeaver API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/api"
	"github.com/routeweaver/routeweaver/internal/api/middleware"
	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/directions/openrouteservice"
	"github.com/routeweaver/routeweaver/internal/history"
	"github.com/routeweaver/routeweaver/internal/legcache"
	"github.com/routeweaver/routeweaver/internal/matrix"
	"github.com/routeweaver/routeweaver/internal/provider/resilience"
	"github.com/routeweaver/routeweaver/internal/solve"
	"github.com/routeweaver/routeweaver/internal/solver/vroom"
	"github.com/routeweaver/routeweaver/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "routeweaver-api"

	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting RouteWeaver API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	orsAPIKey := os.Getenv("ORS_API_KEY")
	if orsAPIKey == "" {
		log.Fatal().Msg("ORS_API_KEY is required")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	solveMetrics, err := telemetry.NewSolveMetrics(telemetry.Meter(serviceName))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize solve metrics")
	}

	// History storage: Postgres when configured, in-memory otherwise.
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

	// Leg cache: Redis when configured, in-memory otherwise.
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
		log.Info().Msg("REDIS_ADDR not set, leg cache is in-memory only")
	}

	// Provider registry tracks upstream health and circuit state.
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
	log.Info().Msg("solve service initialized")

	var authSecret []byte
	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		authSecret = []byte(secret)
	} else {
		log.Warn().Msg("AUTH_SECRET not set, API authentication disabled")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:      Version,
		BuildTime:    BuildTime,
		Logger:       log,
		ServiceName:  serviceName,
		Metrics:      metrics,
		SolveService: solveService,
		History:      historyRepo,
		Providers:    providers,
		AuthSecret:   authSecret,
	})

	// Create HTTP server. Write timeout must cover a full matrix build plus
	// the solver call, so it is far longer than a typical API timeout.
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
