// Package solve orchestrates the full pipeline: location registration,
// matrix construction, problem translation, solving, and route geometry
// reconstruction.
package solve

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/geometry"
	"github.com/routeweaver/routeweaver/internal/history"
	"github.com/routeweaver/routeweaver/internal/matrix"
	"github.com/routeweaver/routeweaver/internal/problem"
	"github.com/routeweaver/routeweaver/internal/solver"
	"github.com/routeweaver/routeweaver/internal/telemetry"
)

// MatrixBuilder constructs the all-pairs travel matrix for a location set.
// Satisfied by *matrix.Builder.
type MatrixBuilder interface {
	Build(ctx context.Context, locations []directions.Coordinate, profile directions.Profile) (*matrix.TravelMatrix, error)
}

// ServiceConfig holds configuration for the solve service.
type ServiceConfig struct {
	// Builder constructs travel matrices (required).
	Builder MatrixBuilder

	// Solver produces route plans (required).
	Solver solver.Solver

	// History records completed runs (optional).
	History history.Repository

	// Metrics records solve telemetry (optional).
	Metrics *telemetry.SolveMetrics

	// Logger for solve operations.
	Logger zerolog.Logger
}

// Service turns a raw routing problem into a solved plan with reconstructed
// route geometry.
type Service struct {
	builder MatrixBuilder
	solver  solver.Solver
	history history.Repository
	metrics *telemetry.SolveMetrics
	logger  zerolog.Logger
}

// NewService creates a new solve service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		builder: cfg.Builder,
		solver:  cfg.Solver,
		history: cfg.History,
		metrics: cfg.Metrics,
		logger:  cfg.Logger.With().Str("component", "solve").Logger(),
	}
}

// Meta describes how a solve run went, independent of the solution itself.
type Meta struct {
	LocationCount int     `json:"location_count"`
	SentinelCells int     `json:"sentinel_cells"`
	EdgeGeometry  int     `json:"edge_geometries"`
	BuildSeconds  float64 `json:"build_seconds"`
	SolveSeconds  float64 `json:"solve_seconds"`
}

// Result is the outcome of one solve run.
type Result struct {
	ID       string           `json:"id"`
	Solution *solver.Solution `json:"solution"`
	Meta     Meta             `json:"meta"`
}

// Solve runs the full pipeline for one problem under one routing profile.
//
// The input problem is not modified. Unresolvable legs degrade to sentinel
// matrix cells rather than failing the run; a job without any location is a
// hard error before any network traffic for the solver.
func (s *Service) Solve(ctx context.Context, p *problem.Problem, profile directions.Profile) (*Result, error) {
	id := "slv_" + uuid.New().String()[:22]
	logger := s.logger.With().Str("solve_id", id).Str("profile", string(profile)).Logger()

	reg := matrix.NewRegistry()
	problem.RegisterLocations(p, reg)

	buildStart := time.Now()
	m, err := s.builder.Build(ctx, reg.Coordinates(), profile)
	if err != nil {
		return nil, err
	}
	buildDuration := time.Since(buildStart)

	translated, err := problem.Translate(p, reg, m, profile)
	if err != nil {
		return nil, err
	}

	solveStart := time.Now()
	solution, err := s.solver.Solve(ctx, translated)
	if err != nil {
		return nil, err
	}
	solveDuration := time.Since(solveStart)

	for i := range solution.Routes {
		solution.Routes[i].Geometry = geometry.StitchRoute(solution.Routes[i].Steps, m)
	}

	result := &Result{
		ID:       id,
		Solution: solution,
		Meta: Meta{
			LocationCount: reg.Len(),
			SentinelCells: m.SentinelCount(),
			EdgeGeometry:  m.GeometryCount(),
			BuildSeconds:  buildDuration.Seconds(),
			SolveSeconds:  solveDuration.Seconds(),
		},
	}

	s.record(ctx, p, result, profile)

	if s.metrics != nil {
		s.metrics.RecordSolve(ctx, string(profile), result.Meta.SentinelCells,
			result.Meta.BuildSeconds, result.Meta.SolveSeconds)
		n := reg.Len()
		s.metrics.RecordLegFetches(ctx, string(profile), n*n-n)
	}

	logger.Info().
		Int("locations", reg.Len()).
		Int("routes", len(solution.Routes)).
		Int("unassigned", len(solution.Unassigned)).
		Int("sentinel_cells", result.Meta.SentinelCells).
		Msg("solve complete")

	return result, nil
}

// BuildMatrix constructs a travel matrix for an explicit location list
// without solving anything.
func (s *Service) BuildMatrix(ctx context.Context, locations []directions.Coordinate, profile directions.Profile) (*matrix.TravelMatrix, error) {
	reg := matrix.NewRegistry()
	for _, loc := range locations {
		reg.Add(loc)
	}
	return s.builder.Build(ctx, reg.Coordinates(), profile)
}

// record persists a history entry. History is best effort: a write failure
// is logged, never surfaced to the caller.
func (s *Service) record(ctx context.Context, p *problem.Problem, result *Result, profile directions.Profile) {
	if s.history == nil {
		return
	}

	err := s.history.Create(ctx, &history.SolveRecord{
		ID:            result.ID,
		Profile:       string(profile),
		LocationCount: result.Meta.LocationCount,
		VehicleCount:  len(p.Vehicles),
		JobCount:      len(p.Jobs),
		SentinelCells: result.Meta.SentinelCells,
		Unassigned:    len(result.Solution.Unassigned),
		SolverCode:    result.Solution.Code,
		TotalCost:     result.Solution.Summary.Cost,
		BuildDuration: result.Meta.BuildSeconds,
		SolveDuration: result.Meta.SolveSeconds,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("solve_id", result.ID).Msg("failed to record solve history")
	}
}
