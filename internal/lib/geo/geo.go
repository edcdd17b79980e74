// Package geo provides the pure geographic math used across the engine:
// great-circle distance, encoded-polyline conversion, and viewport framing.
// No I/O and no state.
package geo

import (
	"errors"
	"math"

	"github.com/twpayne/go-polyline"

	"github.com/girard-solutions/itineris"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// ErrNoPoints is returned when a computation needs at least one point.
var ErrNoPoints = errors.New("geo: point list is empty")

// ErrInvalidCoordinate is returned for coordinates outside WGS84 bounds.
var ErrInvalidCoordinate = errors.New("geo: latitude must be in [-90, 90] and longitude in [-180, 180]")

// Distance computes the great-circle distance between two coordinates in
// meters using the haversine formula. Symmetric, and zero for equal points.
func Distance(a, b itineris.Coordinate) (float64, error) {
	if !a.Valid() || !b.Valid() {
		return 0, ErrInvalidCoordinate
	}
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0, nil
	}

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dlat := (b.Latitude - a.Latitude) * math.Pi / 180
	dlon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c, nil
}

// EncodePolyline encodes coordinates into the standard 5-decimal encoded
// polyline format used by mapping providers.
func EncodePolyline(points []itineris.Coordinate) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes an encoded polyline string into coordinates.
// Round-tripping through EncodePolyline is lossy to ~1e-5 degrees.
func DecodePolyline(encoded string) ([]itineris.Coordinate, error) {
	if encoded == "" {
		return nil, errors.New("geo: encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("geo: failed to decode polyline: " + err.Error())
	}

	points := make([]itineris.Coordinate, len(coords))
	for i, c := range coords {
		points[i] = itineris.Coordinate{Latitude: c[0], Longitude: c[1]}
		if !points[i].Valid() {
			return nil, errors.New("geo: decoded polyline contains invalid coordinates")
		}
	}
	return points, nil
}

// Region is a map viewport: a center with latitude/longitude spans.
type Region struct {
	Center  itineris.Coordinate
	SpanLat float64
	SpanLon float64
}

// regionPadding is the margin applied around the tight bounding box so
// points never sit on the viewport edge.
const regionPadding = 1.2

// minSpanDegrees keeps the viewport usable when all points coincide.
const minSpanDegrees = 0.005

// BoundingRegion frames every input point with a padding margin. An empty
// point list is a contract violation.
func BoundingRegion(points []itineris.Coordinate) (Region, error) {
	if len(points) == 0 {
		return Region{}, ErrNoPoints
	}

	minLat, maxLat := points[0].Latitude, points[0].Latitude
	minLon, maxLon := points[0].Longitude, points[0].Longitude
	for _, p := range points {
		if !p.Valid() {
			return Region{}, ErrInvalidCoordinate
		}
		minLat = math.Min(minLat, p.Latitude)
		maxLat = math.Max(maxLat, p.Latitude)
		minLon = math.Min(minLon, p.Longitude)
		maxLon = math.Max(maxLon, p.Longitude)
	}

	return Region{
		Center: itineris.Coordinate{
			Latitude:  (minLat + maxLat) / 2,
			Longitude: (minLon + maxLon) / 2,
		},
		SpanLat: math.Max((maxLat-minLat)*regionPadding, minSpanDegrees),
		SpanLon: math.Max((maxLon-minLon)*regionPadding, minSpanDegrees),
	}, nil
}

// Contains reports whether the region covers the given coordinate.
func (r Region) Contains(p itineris.Coordinate) bool {
	return math.Abs(p.Latitude-r.Center.Latitude) <= r.SpanLat/2 &&
		math.Abs(p.Longitude-r.Center.Longitude) <= r.SpanLon/2
}
