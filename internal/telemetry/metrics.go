package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SolveMetrics is the instrument set recorded by the solve pipeline.
type SolveMetrics struct {
	solves        metric.Int64Counter
	legFetches    metric.Int64Counter
	sentinelCells metric.Int64Counter
	buildSeconds  metric.Float64Histogram
	solveSeconds  metric.Float64Histogram
}

// NewSolveMetrics creates the solve pipeline instruments on the given meter.
func NewSolveMetrics(meter metric.Meter) (*SolveMetrics, error) {
	solves, err := meter.Int64Counter("routeweaver.solves",
		metric.WithDescription("Completed solve runs"))
	if err != nil {
		return nil, err
	}

	legFetches, err := meter.Int64Counter("routeweaver.matrix_legs",
		metric.WithDescription("Off-diagonal legs resolved during matrix builds"))
	if err != nil {
		return nil, err
	}

	sentinelCells, err := meter.Int64Counter("routeweaver.sentinel_cells",
		metric.WithDescription("Matrix cells filled with the unreachable sentinel"))
	if err != nil {
		return nil, err
	}

	buildSeconds, err := meter.Float64Histogram("routeweaver.matrix_build_seconds",
		metric.WithDescription("Wall time of matrix construction"))
	if err != nil {
		return nil, err
	}

	solveSeconds, err := meter.Float64Histogram("routeweaver.solver_seconds",
		metric.WithDescription("Wall time of the solver call"))
	if err != nil {
		return nil, err
	}

	return &SolveMetrics{
		solves:        solves,
		legFetches:    legFetches,
		sentinelCells: sentinelCells,
		buildSeconds:  buildSeconds,
		solveSeconds:  solveSeconds,
	}, nil
}

// RecordSolve records the outcome of one completed solve run.
func (m *SolveMetrics) RecordSolve(ctx context.Context, profile string, sentinelCells int, buildSeconds, solveSeconds float64) {
	attrs := metric.WithAttributes(attribute.String("profile", profile))
	m.solves.Add(ctx, 1, attrs)
	m.sentinelCells.Add(ctx, int64(sentinelCells), attrs)
	m.buildSeconds.Record(ctx, buildSeconds, attrs)
	m.solveSeconds.Record(ctx, solveSeconds, attrs)
}

// RecordLegFetches records off-diagonal legs resolved for one matrix build.
func (m *SolveMetrics) RecordLegFetches(ctx context.Context, profile string, count int) {
	m.legFetches.Add(ctx, int64(count), metric.WithAttributes(attribute.String("profile", profile)))
}
