package routing

import (
	"context"

	"github.com/girard-solutions/itineris"
)

// junctionEpsilon is the coordinate tolerance, in degrees, below which the
// end of one leg and the start of the next are considered the same point.
const junctionEpsilon = 1e-6

// LegRouter resolves a single leg. *Orchestrator is the production
// implementation.
type LegRouter interface {
	ComputeLeg(ctx context.Context, leg Leg) LegResult
}

// Stitcher assembles multi-waypoint routes from sequential pairwise legs.
type Stitcher struct {
	router LegRouter
}

// NewStitcher wraps a leg router.
func NewStitcher(router LegRouter) *Stitcher {
	return &Stitcher{router: router}
}

// Stitch resolves every consecutive waypoint pair and concatenates the
// results. Totals are exact sums over the legs, junction coordinates are not
// duplicated across segment boundaries, and a single degraded leg marks the
// whole route degraded. Legs are resolved in order so provider rate limits
// are respected.
func (s *Stitcher) Stitch(ctx context.Context, req itineris.RouteRequest) (*itineris.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var vehicle itineris.VehicleProfile
	if req.Vehicle != nil {
		vehicle = *req.Vehicle
	}
	vehicle = vehicle.Normalized()
	route := &itineris.Route{}
	var lastPoint *itineris.Coordinate

	for i := 0; i < len(req.Waypoints)-1; i++ {
		leg := Leg{
			From:    req.Waypoints[i],
			To:      req.Waypoints[i+1],
			Profile: req.Profile,
			Vehicle: vehicle,
		}

		result := s.router.ComputeLeg(ctx, leg)
		segment := *result.Segment

		if lastPoint != nil && len(segment.Geometry) > 0 && samePoint(*lastPoint, segment.Geometry[0]) {
			segment.Geometry = segment.Geometry[1:]
		}
		if n := len(segment.Geometry); n > 0 {
			end := segment.Geometry[n-1]
			lastPoint = &end
		}

		route.Segments = append(route.Segments, segment)
		route.TotalDistanceMeters += segment.DistanceMeters
		route.TotalDurationSeconds += segment.DurationSeconds
		route.Warnings = append(route.Warnings, result.Warnings...)
		if result.Degraded {
			route.Degraded = true
		}
	}

	return route, nil
}

func samePoint(a, b itineris.Coordinate) bool {
	return abs(a.Latitude-b.Latitude) < junctionEpsilon && abs(a.Longitude-b.Longitude) < junctionEpsilon
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
