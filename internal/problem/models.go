// Package problem defines the vehicle routing problem shape exchanged with
// the external solver, and the translation from raw coordinates to matrix
// indices.
package problem

import (
	"github.com/routeweaver/routeweaver/internal/directions"
)

// Location is a [lon, lat] pair, the coordinate order used on the wire by
// both the directions provider and the solver.
type Location [2]float64

// LocationFromCoordinate converts a domain coordinate to wire order.
func LocationFromCoordinate(c directions.Coordinate) Location {
	return Location{c.Lon, c.Lat}
}

// Coordinate converts back to the domain representation.
func (l Location) Coordinate() directions.Coordinate {
	return directions.Coordinate{Lat: l[1], Lon: l[0]}
}

// Job is a single-stop task.
type Job struct {
	ID            int64    `json:"id"`
	Description   string   `json:"description,omitempty"`
	Location      *Location `json:"location,omitempty"`
	LocationIndex *int     `json:"location_index,omitempty"`
	Service       int64    `json:"service,omitempty"`
	Delivery      []int64  `json:"delivery,omitempty"`
	Pickup        []int64  `json:"pickup,omitempty"`
	Skills        []int    `json:"skills,omitempty"`
	Priority      int      `json:"priority,omitempty"`
	TimeWindows   [][]int64 `json:"time_windows,omitempty"`
}

// ShipmentStep is the pickup or delivery half of a shipment.
type ShipmentStep struct {
	ID            int64     `json:"id"`
	Description   string    `json:"description,omitempty"`
	Location      *Location `json:"location,omitempty"`
	LocationIndex *int      `json:"location_index,omitempty"`
	Service       int64     `json:"service,omitempty"`
	TimeWindows   [][]int64 `json:"time_windows,omitempty"`
}

// Shipment is a linked pickup-delivery pair.
type Shipment struct {
	Pickup   ShipmentStep `json:"pickup"`
	Delivery ShipmentStep `json:"delivery"`
	Amount   []int64      `json:"amount,omitempty"`
	Skills   []int        `json:"skills,omitempty"`
	Priority int          `json:"priority,omitempty"`
}

// Vehicle describes one vehicle and its optional start/end points.
type Vehicle struct {
	ID          int64     `json:"id"`
	Description string    `json:"description,omitempty"`
	Profile     string    `json:"profile,omitempty"`
	Start       *Location `json:"start,omitempty"`
	StartIndex  *int      `json:"start_index,omitempty"`
	End         *Location `json:"end,omitempty"`
	EndIndex    *int      `json:"end_index,omitempty"`
	Capacity    []int64   `json:"capacity,omitempty"`
	Skills      []int     `json:"skills,omitempty"`
	TimeWindow  []int64   `json:"time_window,omitempty"`
	MaxTasks    int       `json:"max_tasks,omitempty"`
}

// MatrixPayload carries the two dense tables attached under a profile key.
type MatrixPayload struct {
	Durations [][]int64 `json:"durations"`
	Distances [][]int64 `json:"distances,omitempty"`
}

// Problem is a vehicle routing problem. Before translation entities carry
// raw Locations; after translation they carry only location indices plus the
// matrices attached under their profile key.
type Problem struct {
	Jobs      []Job                    `json:"jobs,omitempty"`
	Shipments []Shipment               `json:"shipments,omitempty"`
	Vehicles  []Vehicle                `json:"vehicles"`
	Matrices  map[string]MatrixPayload `json:"matrices,omitempty"`
}
