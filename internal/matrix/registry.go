package matrix

import (
	"errors"
	"fmt"

	"github.com/routeweaver/routeweaver/internal/directions"
)

// ErrLocationNotFound indicates a lookup for a coordinate that was never
// registered. This is a programming-contract violation, fatal to the solve
// operation, not a recoverable runtime failure.
var ErrLocationNotFound = errors.New("location not registered")

// Registry assigns stable indices to the distinct coordinates of one solve
// operation. Indices follow first-seen order; registering the same coordinate
// value again returns the existing index. Equality is exact, with no
// geographic tolerance or snapping.
//
// A Registry belongs to a single solve operation and is not safe for
// concurrent use.
type Registry struct {
	coords []directions.Coordinate
	byKey  map[directions.Coordinate]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[directions.Coordinate]int)}
}

// Add registers a coordinate and returns its index, reusing the existing
// index for an already-seen value.
func (r *Registry) Add(c directions.Coordinate) int {
	if idx, ok := r.byKey[c]; ok {
		return idx
	}
	idx := len(r.coords)
	r.coords = append(r.coords, c)
	r.byKey[c] = idx
	return idx
}

// Index returns the index assigned to c, or ErrLocationNotFound if c was
// never registered.
func (r *Registry) Index(c directions.Coordinate) (int, error) {
	idx, ok := r.byKey[c]
	if !ok {
		return 0, fmt.Errorf("%w: (%v, %v)", ErrLocationNotFound, c.Lat, c.Lon)
	}
	return idx, nil
}

// Coordinates returns the registered coordinates in index order.
func (r *Registry) Coordinates() []directions.Coordinate {
	return r.coords
}

// Len returns the number of distinct registered coordinates.
func (r *Registry) Len() int {
	return len(r.coords)
}
