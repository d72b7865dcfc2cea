// Package polyline implements Google's encoded polyline algorithm, the
// compact string representation of an ordered coordinate sequence used by
// OpenRouteService and compatible directions APIs.
// See: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"errors"
	"math"
)

// precisionFactor corresponds to precision 5, the standard Google/ORS format.
const precisionFactor = 1e5

// ErrTruncated is returned when an encoded polyline ends mid-value.
var ErrTruncated = errors.New("polyline: truncated encoding")

// Point is a geographic point with latitude and longitude.
type Point struct {
	Lat float64
	Lon float64
}

// Decode decodes an encoded polyline into its point sequence.
// An empty input decodes to an empty (nil) sequence.
func Decode(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, nil
	}

	points := make([]Point, 0, len(encoded)/4)
	lat, lon := 0, 0

	for i := 0; i < len(encoded); {
		dLat, next, err := decodeDelta(encoded, i)
		if err != nil {
			return nil, err
		}
		lat += dLat

		dLon, next, err := decodeDelta(encoded, next)
		if err != nil {
			return nil, err
		}
		lon += dLon
		i = next

		points = append(points, Point{
			Lat: float64(lat) / precisionFactor,
			Lon: float64(lon) / precisionFactor,
		})
	}

	return points, nil
}

// decodeDelta reads one zigzag-encoded delta starting at index i.
func decodeDelta(encoded string, i int) (delta, next int, err error) {
	shift, result := 0, 0
	for {
		if i >= len(encoded) {
			return 0, i, ErrTruncated
		}
		b := int(encoded[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// Encode encodes a point sequence into a polyline string.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(points)*4)
	prevLat, prevLon := 0, 0

	for _, p := range points {
		lat := int(math.Round(p.Lat * precisionFactor))
		lon := int(math.Round(p.Lon * precisionFactor))

		buf = appendDelta(buf, lat-prevLat)
		buf = appendDelta(buf, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return string(buf)
}

// appendDelta appends one zigzag-encoded delta in 5-bit chunks.
func appendDelta(buf []byte, v int) []byte {
	if v < 0 {
		v = ^(v << 1)
	} else {
		v <<= 1
	}

	for v >= 0x20 {
		buf = append(buf, byte((v&0x1f)|0x20)+63)
		v >>= 5
	}
	return append(buf, byte(v)+63)
}

const earthRadiusMeters = 6371000

// Length returns the total great-circle length of the point sequence in meters.
func Length(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += haversine(points[i-1], points[i])
	}
	return total
}

func haversine(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
