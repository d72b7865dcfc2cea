// Package geometry reconstructs continuous route geometry from the per-edge
// paths recorded during matrix construction.
package geometry

import (
	"github.com/routeweaver/routeweaver/internal/solver"
	"github.com/routeweaver/routeweaver/pkg/polyline"
)

// EdgeGeometry looks up the encoded path recorded for one directed edge.
// Satisfied by *matrix.TravelMatrix.
type EdgeGeometry interface {
	Geometry(from, to int) (string, bool)
}

// StitchRoute combines the edge geometries along a solved route into one
// continuous encoded path.
//
// For each consecutive step pair the edge geometry is looked up by the
// steps' location indices; pairs missing an index or a recorded geometry are
// skipped. Segments are concatenated in order, with every segment after the
// first dropping its first point, which duplicates the previous segment's
// endpoint at the shared junction.
//
// If the chain cannot be decoded, the first individually-valid edge geometry
// is returned instead; if no edge geometry exists at all, the result is
// empty. Stitching is best-effort and never an error.
func StitchRoute(steps []solver.Step, edges EdgeGeometry) string {
	segments := collectSegments(steps, edges)
	if len(segments) == 0 {
		return ""
	}

	combined, ok := joinSegments(segments)
	if !ok {
		return firstValidSegment(segments)
	}
	return combined
}

// collectSegments gathers the encoded geometries for each consecutive step
// pair that has indices on both ends and a recorded edge path.
func collectSegments(steps []solver.Step, edges EdgeGeometry) []string {
	var segments []string
	for i := 0; i+1 < len(steps); i++ {
		from := steps[i].LocationIndex
		to := steps[i+1].LocationIndex
		if from == nil || to == nil {
			continue
		}
		if encoded, ok := edges.Geometry(*from, *to); ok && encoded != "" {
			segments = append(segments, encoded)
		}
	}
	return segments
}

// joinSegments decodes and concatenates all segments, de-duplicating the
// shared junction points, and re-encodes the result.
func joinSegments(segments []string) (string, bool) {
	var combined []polyline.Point
	for i, encoded := range segments {
		points, err := polyline.Decode(encoded)
		if err != nil {
			return "", false
		}
		if i > 0 && len(points) > 0 {
			points = points[1:]
		}
		combined = append(combined, points...)
	}
	return polyline.Encode(combined), true
}

// firstValidSegment returns the first segment that decodes cleanly, or the
// empty string when none does.
func firstValidSegment(segments []string) string {
	for _, encoded := range segments {
		if _, err := polyline.Decode(encoded); err == nil {
			return encoded
		}
	}
	return ""
}
