// Package matrix builds solver-ready all-pairs travel matrices from a set of
// registered locations, using a directions gateway for off-diagonal legs.
package matrix

// DistanceScale converts provider meters into the solver's distance unit.
const DistanceScale = 1000

// Sentinel measurements substituted for unreachable or failed legs. They are
// large but finite so downstream numeric consumers never see non-finite
// values or a dedicated "unreachable" type.
const (
	SentinelDuration int64 = 999999
	SentinelDistance int64 = 999999 * DistanceScale
)

// Edge identifies one directed origin-destination cell by location index.
type Edge struct {
	From int
	To   int
}

// TravelMatrix holds the dense duration and distance tables plus the per-edge
// geometry side map. It is built once per solve operation and read-only
// thereafter; it is never shared across concurrent solves.
type TravelMatrix struct {
	// Durations is the N×N table of travel times in whole seconds.
	Durations [][]int64
	// Distances is the N×N table of travel distances in the solver's
	// scaled unit (meters × DistanceScale).
	Distances [][]int64

	geometries map[Edge]string
}

// newTravelMatrix allocates an n×n matrix with all cells zeroed.
func newTravelMatrix(n int) *TravelMatrix {
	m := &TravelMatrix{
		Durations:  make([][]int64, n),
		Distances:  make([][]int64, n),
		geometries: make(map[Edge]string),
	}
	for i := 0; i < n; i++ {
		m.Durations[i] = make([]int64, n)
		m.Distances[i] = make([]int64, n)
	}
	return m
}

// Size returns the location count N.
func (m *TravelMatrix) Size() int {
	return len(m.Durations)
}

// Geometry returns the encoded path geometry recorded for one edge.
func (m *TravelMatrix) Geometry(from, to int) (string, bool) {
	g, ok := m.geometries[Edge{From: from, To: to}]
	return g, ok
}

// GeometryCount returns the number of edges with recorded geometry.
func (m *TravelMatrix) GeometryCount() int {
	return len(m.geometries)
}

// SentinelCount returns the number of cells holding the sentinel duration,
// i.e. legs that were unreachable or failed to resolve.
func (m *TravelMatrix) SentinelCount() int {
	count := 0
	for _, row := range m.Durations {
		for _, cell := range row {
			if cell == SentinelDuration {
				count++
			}
		}
	}
	return count
}
