// Package history persists a record of completed solve runs.
package history

import (
	"errors"
	"time"
)

// ErrRecordNotFound is returned when a solve record doesn't exist.
var ErrRecordNotFound = errors.New("solve record not found")

// SolveRecord captures the outcome of one solve run.
type SolveRecord struct {
	ID            string    `json:"id"`
	Profile       string    `json:"profile"`
	LocationCount int       `json:"location_count"`
	VehicleCount  int       `json:"vehicle_count"`
	JobCount      int       `json:"job_count"`
	SentinelCells int       `json:"sentinel_cells"`
	Unassigned    int       `json:"unassigned"`
	SolverCode    int       `json:"solver_code"`
	TotalCost     int64     `json:"total_cost"`
	BuildDuration float64   `json:"build_duration_seconds"`
	SolveDuration float64   `json:"solve_duration_seconds"`
	CreatedAt     time.Time `json:"created_at"`
}
