// Package handler provides HTTP handlers for the RouteWeaver API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/routeweaver/routeweaver/internal/api/models"
	"github.com/routeweaver/routeweaver/internal/api/response"
	"github.com/routeweaver/routeweaver/internal/directions"
	"github.com/routeweaver/routeweaver/internal/matrix"
	"github.com/routeweaver/routeweaver/internal/problem"
	"github.com/routeweaver/routeweaver/internal/solve"
	"github.com/routeweaver/routeweaver/internal/solver"
)

// MaxLocations bounds a single request's location set. The matrix is N², so
// this caps one request at 10000 upstream leg fetches.
const MaxLocations = 100

// SolveService is the pipeline surface the handlers need. Satisfied by
// *solve.Service.
type SolveService interface {
	Solve(ctx context.Context, p *problem.Problem, profile directions.Profile) (*solve.Result, error)
	BuildMatrix(ctx context.Context, locations []directions.Coordinate, profile directions.Profile) (*matrix.TravelMatrix, error)
}

// SolveHandler handles solve and matrix endpoints.
type SolveHandler struct {
	service SolveService
}

// NewSolveHandler creates a new SolveHandler.
func NewSolveHandler(service SolveService) *SolveHandler {
	return &SolveHandler{service: service}
}

// Solve handles POST /v1/solve.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	var req models.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	profile, ok := directions.ParseProfile(req.Profile)
	if !ok {
		response.BadRequest(w, r, "unknown profile", []models.FieldError{
			{Field: "profile", Message: fmt.Sprintf("unknown profile %q", req.Profile)},
		})
		return
	}

	if len(req.Vehicles) == 0 {
		response.BadRequest(w, r, "at least one vehicle is required", []models.FieldError{
			{Field: "vehicles", Message: "is required"},
		})
		return
	}

	p := &problem.Problem{
		Jobs:      req.Jobs,
		Shipments: req.Shipments,
		Vehicles:  req.Vehicles,
	}

	result, err := h.service.Solve(r.Context(), p, profile)
	if err != nil {
		h.writeSolveError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// BuildMatrix handles POST /v1/matrix.
func (h *SolveHandler) BuildMatrix(w http.ResponseWriter, r *http.Request) {
	var req models.MatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	profile, ok := directions.ParseProfile(req.Profile)
	if !ok {
		response.BadRequest(w, r, "unknown profile", []models.FieldError{
			{Field: "profile", Message: fmt.Sprintf("unknown profile %q", req.Profile)},
		})
		return
	}

	if len(req.Locations) == 0 {
		response.BadRequest(w, r, "at least one location is required", []models.FieldError{
			{Field: "locations", Message: "is required"},
		})
		return
	}
	if len(req.Locations) > MaxLocations {
		response.BadRequest(w, r, "too many locations", []models.FieldError{
			{Field: "locations", Message: fmt.Sprintf("must contain at most %d entries", MaxLocations)},
		})
		return
	}

	coords := make([]directions.Coordinate, 0, len(req.Locations))
	for i, loc := range req.Locations {
		c := loc.Coordinate()
		if err := directions.ValidateCoordinate(c); err != nil {
			response.BadRequest(w, r, "invalid location", []models.FieldError{
				{Field: fmt.Sprintf("locations[%d]", i), Message: "out of geographic range"},
			})
			return
		}
		coords = append(coords, c)
	}

	m, err := h.service.BuildMatrix(r.Context(), coords, profile)
	if err != nil {
		h.writeSolveError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.MatrixResponse{
		Durations:     m.Durations,
		Distances:     m.Distances,
		SentinelCells: m.SentinelCount(),
	})
}

// writeSolveError maps pipeline errors onto HTTP problem responses.
func (h *SolveHandler) writeSolveError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *problem.MissingLocationError
	if errors.As(err, &missing) {
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "jobs", Message: fmt.Sprintf("job %d has neither location nor location_index", missing.JobID)},
		})
		return
	}

	var solverErr *solver.Error
	if errors.As(err, &solverErr) {
		response.BadGateway(w, r, "solver request failed")
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		response.ServiceUnavailable(w, r, "request cancelled or timed out")
		return
	}

	response.InternalError(w, r, "solve failed")
}
