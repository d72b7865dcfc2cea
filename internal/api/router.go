// Package api provides the HTTP API for RouteWeaver.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/api/handler"
	"github.com/routeweaver/routeweaver/internal/api/middleware"
	"github.com/routeweaver/routeweaver/internal/history"
	"github.com/routeweaver/routeweaver/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version      string
	BuildTime    string
	Logger       zerolog.Logger
	ServiceName  string
	Metrics      *middleware.Metrics
	SolveService handler.SolveService
	History      history.Repository
	Providers    *resilience.Registry

	// AuthSecret enables HS256 bearer authentication on solve endpoints
	// when non-empty.
	AuthSecret []byte
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "routeweaver-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireJSON)
	r.Use(middleware.ContentTypeJSON)

	solveHandler := handler.NewSolveHandler(cfg.SolveService)
	historyHandler := handler.NewHistoryHandler(cfg.History)
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Providers)

	authMiddleware := middleware.Auth(cfg.AuthSecret)

	// Solve endpoints fan out N² upstream calls, so their limit is strict.
	solveRateLimit := middleware.RateLimitByClient(middleware.SolveRateLimit)
	standardRateLimit := middleware.RateLimitByClient(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		r.With(authMiddleware, solveRateLimit).Post("/solve", solveHandler.Solve)
		r.With(authMiddleware, solveRateLimit).Post("/matrix", solveHandler.BuildMatrix)

		// Solve history
		r.Route("/solves", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", historyHandler.ListSolves)
			r.Get("/{solveId}", historyHandler.GetSolve)
		})
	})

	return r
}
