// Package solver defines the interface to the external vehicle routing
// solver and its solution shape.
package solver

import (
	"context"
	"errors"

	"github.com/routeweaver/routeweaver/internal/problem"
)

// ErrRequestFailed indicates the solver rejected or failed the request.
// Solver failures are fatal for the solve operation; there is no retry.
var ErrRequestFailed = errors.New("solver request failed")

// Solver submits a translated problem and returns the solution.
type Solver interface {
	Solve(ctx context.Context, p *problem.Problem) (*Solution, error)
	// Name returns the solver identifier for logging and health tracking.
	Name() string
}

// Solution is the solver's answer for one problem.
type Solution struct {
	// Code is the solver status: 0 means ok, anything else is a
	// solver-level error described by Error.
	Code       int          `json:"code"`
	Error      string       `json:"error,omitempty"`
	Summary    Summary      `json:"summary"`
	Unassigned []Unassigned `json:"unassigned,omitempty"`
	Routes     []Route      `json:"routes,omitempty"`
}

// Summary aggregates solution-level costs.
type Summary struct {
	Cost        int64 `json:"cost"`
	Routes      int   `json:"routes"`
	Unassigned  int   `json:"unassigned"`
	Duration    int64 `json:"duration"`
	Distance    int64 `json:"distance,omitempty"`
	Service     int64 `json:"service,omitempty"`
	WaitingTime int64 `json:"waiting_time,omitempty"`
}

// Unassigned names a task the solver could not place on any route.
type Unassigned struct {
	ID          int64             `json:"id"`
	Type        string            `json:"type,omitempty"`
	Description string            `json:"description,omitempty"`
	Location    *problem.Location `json:"location,omitempty"`
}

// Route is one vehicle's ordered stop sequence.
type Route struct {
	Vehicle     int64  `json:"vehicle"`
	Cost        int64  `json:"cost"`
	Duration    int64  `json:"duration"`
	Distance    int64  `json:"distance,omitempty"`
	Service     int64  `json:"service,omitempty"`
	WaitingTime int64  `json:"waiting_time,omitempty"`
	Steps       []Step `json:"steps"`
	// Geometry is the combined encoded path for the whole route, stitched
	// from per-leg geometries after solving. Empty when unavailable.
	Geometry string `json:"geometry,omitempty"`
}

// Step is one stop along a route.
type Step struct {
	Type          string            `json:"type"`
	ID            int64             `json:"id,omitempty"`
	Description   string            `json:"description,omitempty"`
	Location      *problem.Location `json:"location,omitempty"`
	LocationIndex *int              `json:"location_index,omitempty"`
	Arrival       int64             `json:"arrival,omitempty"`
	Duration      int64             `json:"duration,omitempty"`
	Service       int64             `json:"service,omitempty"`
	WaitingTime   int64             `json:"waiting_time,omitempty"`
	Load          []int64           `json:"load,omitempty"`
}

// Error carries solver failure details.
type Error struct {
	Solver     string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
