package geometry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routeweaver/routeweaver/internal/geometry"
	"github.com/routeweaver/routeweaver/internal/solver"
	"github.com/routeweaver/routeweaver/pkg/polyline"
)

type fakeEdges map[[2]int]string

func (f fakeEdges) Geometry(from, to int) (string, bool) {
	g, ok := f[[2]int{from, to}]
	return g, ok
}

func idx(i int) *int { return &i }

func steps(indices ...int) []solver.Step {
	out := make([]solver.Step, len(indices))
	for i, n := range indices {
		out[i] = solver.Step{Type: "job", LocationIndex: idx(n)}
	}
	return out
}

func encode(t *testing.T, pts ...polyline.Point) string {
	t.Helper()
	return polyline.Encode(pts)
}

func TestStitchRoute_DeduplicatesJunctions(t *testing.T) {
	edges := fakeEdges{
		{0, 1}: encode(t, polyline.Point{Lat: 0, Lon: 0}, polyline.Point{Lat: 1, Lon: 1}),
		{1, 2}: encode(t, polyline.Point{Lat: 1, Lon: 1}, polyline.Point{Lat: 2, Lon: 2}),
	}

	stitched := geometry.StitchRoute(steps(0, 1, 2), edges)
	require.NotEmpty(t, stitched)

	points, err := polyline.Decode(stitched)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, polyline.Point{Lat: 0, Lon: 0}, points[0])
	assert.Equal(t, polyline.Point{Lat: 1, Lon: 1}, points[1])
	assert.Equal(t, polyline.Point{Lat: 2, Lon: 2}, points[2])
}

func TestStitchRoute_SingleEdge(t *testing.T) {
	encoded := encode(t, polyline.Point{Lat: 10, Lon: 20}, polyline.Point{Lat: 11, Lon: 21})
	edges := fakeEdges{{0, 1}: encoded}

	assert.Equal(t, encoded, geometry.StitchRoute(steps(0, 1), edges))
}

func TestStitchRoute_NoGeometryRecorded(t *testing.T) {
	assert.Empty(t, geometry.StitchRoute(steps(0, 1, 2), fakeEdges{}))
}

func TestStitchRoute_SkipsStepsWithoutIndices(t *testing.T) {
	edges := fakeEdges{
		{0, 1}: encode(t, polyline.Point{Lat: 0, Lon: 0}, polyline.Point{Lat: 1, Lon: 1}),
	}
	route := []solver.Step{
		{Type: "start", LocationIndex: idx(0)},
		{Type: "job", LocationIndex: idx(1)},
		{Type: "end"}, // no index, pair skipped
	}

	stitched := geometry.StitchRoute(route, edges)
	points, err := polyline.Decode(stitched)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestStitchRoute_FallsBackToFirstValidSegment(t *testing.T) {
	valid := encode(t, polyline.Point{Lat: 1, Lon: 1}, polyline.Point{Lat: 2, Lon: 2})
	edges := fakeEdges{
		{0, 1}: "\x7f\x7f", // undecodable
		{1, 2}: valid,
	}

	assert.Equal(t, valid, geometry.StitchRoute(steps(0, 1, 2), edges))
}

func TestStitchRoute_AllSegmentsCorrupt(t *testing.T) {
	edges := fakeEdges{
		{0, 1}: "\x7f",
		{1, 2}: "\x7f\x7f",
	}

	assert.Empty(t, geometry.StitchRoute(steps(0, 1, 2), edges))
}

func TestStitchRoute_EmptyRoute(t *testing.T) {
	assert.Empty(t, geometry.StitchRoute(nil, fakeEdges{}))
	assert.Empty(t, geometry.StitchRoute(steps(0), fakeEdges{}))
}
