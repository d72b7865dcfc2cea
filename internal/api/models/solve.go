// Package models defines the request and response types of the HTTP API.
package models

import (
	"time"

	"github.com/routeweaver/routeweaver/internal/problem"
	"github.com/routeweaver/routeweaver/internal/solve"
)

// SolveRequest is the body of POST /v1/solve. Entity shapes follow the
// solver's problem format; every location is [lon, lat].
type SolveRequest struct {
	// Profile selects the routing profile for all matrix legs. Defaults
	// to driving-car.
	Profile string `json:"profile,omitempty"`

	Jobs      []problem.Job      `json:"jobs,omitempty"`
	Shipments []problem.Shipment `json:"shipments,omitempty"`
	Vehicles  []problem.Vehicle  `json:"vehicles"`
}

// SolveResponse is the body returned by POST /v1/solve.
type SolveResponse = solve.Result

// MatrixRequest is the body of POST /v1/matrix.
type MatrixRequest struct {
	// Profile selects the routing profile. Defaults to driving-car.
	Profile string `json:"profile,omitempty"`

	// Locations to measure, as [lon, lat] pairs. Duplicates collapse to
	// one matrix index.
	Locations []problem.Location `json:"locations"`
}

// MatrixResponse is the body returned by POST /v1/matrix.
type MatrixResponse struct {
	// Durations in whole seconds, N×N.
	Durations [][]int64 `json:"durations"`

	// Distances in the solver's scaled unit, N×N.
	Distances [][]int64 `json:"distances"`

	// SentinelCells counts legs that could not be resolved.
	SentinelCells int `json:"sentinel_cells"`
}

// SolveRecord is one history entry as returned by the API.
type SolveRecord struct {
	ID            string    `json:"id"`
	Profile       string    `json:"profile"`
	LocationCount int       `json:"locationCount"`
	VehicleCount  int       `json:"vehicleCount"`
	JobCount      int       `json:"jobCount"`
	SentinelCells int       `json:"sentinelCells"`
	Unassigned    int       `json:"unassigned"`
	SolverCode    int       `json:"solverCode"`
	TotalCost     int64     `json:"totalCost"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PagedSolveRecords is a paginated history listing.
type PagedSolveRecords struct {
	Items []SolveRecord     `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}

// PagedResponseMeta carries pagination state.
type PagedResponseMeta struct {
	Limit      int     `json:"limit"`
	NextCursor *string `json:"nextCursor,omitempty"`
}
