// Package worker processes asynchronous solve jobs delivered over Pub/Sub.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/problem"
	"github.com/routeweaver/routeweaver/internal/solve"
)

// Job types accepted on the solve subscription.
const (
	JobTypeSolve      = "solve"
	JobTypeWarmMatrix = "warm_matrix"
)

// SolveMessage is the payload of one queued job.
type SolveMessage struct {
	JobType string `json:"job_type"`

	// Profile selects the routing profile. Defaults to driving-car.
	Profile string `json:"profile,omitempty"`

	// Solve jobs carry a full problem.
	Jobs      []problem.Job      `json:"jobs,omitempty"`
	Shipments []problem.Shipment `json:"shipments,omitempty"`
	Vehicles  []problem.Vehicle  `json:"vehicles,omitempty"`

	// Warm jobs carry only a location set; building the matrix populates
	// the leg cache so later interactive solves skip the provider.
	Locations []problem.Location `json:"locations,omitempty"`
}

// SolveJob executes queued solve and matrix-warm work.
type SolveJob struct {
	service *solve.Service
	timeout time.Duration
	logger  zerolog.Logger
}

// SolveJobConfig holds configuration for creating a SolveJob.
type SolveJobConfig struct {
	// Service runs the solve pipeline (required).
	Service *solve.Service

	// Timeout bounds one job execution. Defaults to 10 minutes.
	Timeout time.Duration

	Logger zerolog.Logger
}

// NewSolveJob creates a new solve job processor.
func NewSolveJob(cfg SolveJobConfig) *SolveJob {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	return &SolveJob{
		service: cfg.Service,
		timeout: timeout,
		logger:  cfg.Logger.With().Str("component", "worker").Logger(),
	}
}

// Run dispatches one decoded message to the matching job handler.
func (j *SolveJob) Run(ctx context.Context, msg SolveMessage) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	profile, ok := directions.ParseProfile(msg.Profile)
	if !ok {
		return fmt.Errorf("unknown profile %q", msg.Profile)
	}

	switch msg.JobType {
	case JobTypeSolve:
		return j.runSolve(ctx, msg, profile)
	case JobTypeWarmMatrix:
		return j.runWarmMatrix(ctx, msg, profile)
	default:
		return fmt.Errorf("unknown job type %q", msg.JobType)
	}
}

func (j *SolveJob) runSolve(ctx context.Context, msg SolveMessage, profile directions.Profile) error {
	if len(msg.Vehicles) == 0 {
		return fmt.Errorf("solve job has no vehicles")
	}

	p := &problem.Problem{
		Jobs:      msg.Jobs,
		Shipments: msg.Shipments,
		Vehicles:  msg.Vehicles,
	}

	result, err := j.service.Solve(ctx, p, profile)
	if err != nil {
		return fmt.Errorf("solve job: %w", err)
	}

	j.logger.Info().
		Str("solve_id", result.ID).
		Int("routes", len(result.Solution.Routes)).
		Int("unassigned", len(result.Solution.Unassigned)).
		Msg("queued solve completed")

	return nil
}

func (j *SolveJob) runWarmMatrix(ctx context.Context, msg SolveMessage, profile directions.Profile) error {
	if len(msg.Locations) == 0 {
		return fmt.Errorf("warm job has no locations")
	}

	coords := make([]directions.Coordinate, 0, len(msg.Locations))
	for _, loc := range msg.Locations {
		c := loc.Coordinate()
		if err := directions.ValidateCoordinate(c); err != nil {
			return fmt.Errorf("warm job: %w", err)
		}
		coords = append(coords, c)
	}

	m, err := j.service.BuildMatrix(ctx, coords, profile)
	if err != nil {
		return fmt.Errorf("warm job: %w", err)
	}

	j.logger.Info().
		Int("locations", m.Size()).
		Int("sentinel_cells", m.SentinelCount()).
		Msg("matrix warm completed")

	return nil
}
