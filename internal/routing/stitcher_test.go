package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girard-solutions/itineris"
)

// scriptedRouter returns one canned result per leg, in call order.
type scriptedRouter struct {
	results []LegResult
	legs    []Leg
}

func (s *scriptedRouter) ComputeLeg(ctx context.Context, leg Leg) LegResult {
	s.legs = append(s.legs, leg)
	result := s.results[0]
	s.results = s.results[1:]
	return result
}

// line builds a straight geometry of n points from a to b inclusive.
func line(a, b itineris.Coordinate, n int) []itineris.Coordinate {
	points := make([]itineris.Coordinate, n)
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		points[i] = itineris.Coordinate{
			Latitude:  a.Latitude + f*(b.Latitude-a.Latitude),
			Longitude: a.Longitude + f*(b.Longitude-a.Longitude),
		}
	}
	return points
}

func TestStitch_JunctionNotDuplicated(t *testing.T) {
	a := itineris.Coordinate{Latitude: 48.0, Longitude: 1.0}
	b := itineris.Coordinate{Latitude: 48.5, Longitude: 1.5}
	c := itineris.Coordinate{Latitude: 49.0, Longitude: 2.0}

	router := &scriptedRouter{results: []LegResult{
		{Segment: &itineris.RouteSegment{DistanceMeters: 60000, DurationSeconds: 2700, Geometry: line(a, b, 10)}},
		{Segment: &itineris.RouteSegment{DistanceMeters: 61000, DurationSeconds: 2800, Geometry: line(b, c, 10)}},
	}}

	route, err := NewStitcher(router).Stitch(context.Background(), itineris.RouteRequest{
		Waypoints: []itineris.Coordinate{a, b, c},
		Profile:   itineris.ProfileDriving,
	})
	require.NoError(t, err)

	// Two 10-point legs share the junction at b: 19 points remain.
	total := 0
	for _, seg := range route.Segments {
		total += len(seg.Geometry)
	}
	assert.Equal(t, 19, total)

	require.Len(t, route.Segments, 2)
	assert.NotEqual(t, b, route.Segments[1].Geometry[0], "junction dropped from second leg")

	assert.Equal(t, 121000.0, route.TotalDistanceMeters)
	assert.Equal(t, 5500.0, route.TotalDurationSeconds)
	assert.False(t, route.Degraded)
}

func TestStitch_DistinctEndpointsKept(t *testing.T) {
	a := itineris.Coordinate{Latitude: 48.0, Longitude: 1.0}
	b := itineris.Coordinate{Latitude: 48.5, Longitude: 1.5}
	bSnap := itineris.Coordinate{Latitude: 48.51, Longitude: 1.51} // provider snapped to a road
	c := itineris.Coordinate{Latitude: 49.0, Longitude: 2.0}

	router := &scriptedRouter{results: []LegResult{
		{Segment: &itineris.RouteSegment{Geometry: line(a, b, 5)}},
		{Segment: &itineris.RouteSegment{Geometry: line(bSnap, c, 5)}},
	}}

	route, err := NewStitcher(router).Stitch(context.Background(), itineris.RouteRequest{
		Waypoints: []itineris.Coordinate{a, b, c},
		Profile:   itineris.ProfileDriving,
	})
	require.NoError(t, err)

	total := 0
	for _, seg := range route.Segments {
		total += len(seg.Geometry)
	}
	assert.Equal(t, 10, total, "no dedupe when the points actually differ")
}

func TestStitch_DegradedLegMarksRoute(t *testing.T) {
	a := itineris.Coordinate{Latitude: 48.0, Longitude: 1.0}
	b := itineris.Coordinate{Latitude: 48.5, Longitude: 1.5}
	c := itineris.Coordinate{Latitude: 49.0, Longitude: 2.0}

	router := &scriptedRouter{results: []LegResult{
		{Segment: &itineris.RouteSegment{Geometry: line(a, b, 5)}},
		{
			Segment:  &itineris.RouteSegment{Geometry: []itineris.Coordinate{b, c}},
			Warnings: []string{"osrm unavailable: connection refused"},
			Degraded: true,
		},
	}}

	route, err := NewStitcher(router).Stitch(context.Background(), itineris.RouteRequest{
		Waypoints: []itineris.Coordinate{a, b, c},
		Profile:   itineris.ProfileDriving,
	})
	require.NoError(t, err)

	assert.True(t, route.Degraded)
	require.Len(t, route.Warnings, 1)
	assert.Contains(t, route.Warnings[0], "osrm")
}

func TestStitch_NormalizesVehicleForEveryLeg(t *testing.T) {
	a := itineris.Coordinate{Latitude: 48.0, Longitude: 1.0}
	b := itineris.Coordinate{Latitude: 48.5, Longitude: 1.5}

	router := &scriptedRouter{results: []LegResult{
		{Segment: &itineris.RouteSegment{Geometry: line(a, b, 2)}},
	}}

	_, err := NewStitcher(router).Stitch(context.Background(), itineris.RouteRequest{
		Waypoints: []itineris.Coordinate{a, b},
		Profile:   itineris.ProfileDriving,
		Vehicle:   &itineris.VehicleProfile{MassTonnes: 32},
	})
	require.NoError(t, err)

	require.Len(t, router.legs, 1)
	assert.Equal(t, 32.0, router.legs[0].Vehicle.MassTonnes)
	assert.Equal(t, 2.0, router.legs[0].Vehicle.HeightM, "absent height takes the default")
}

func TestStitch_RejectsShortChains(t *testing.T) {
	router := &scriptedRouter{}

	_, err := NewStitcher(router).Stitch(context.Background(), itineris.RouteRequest{
		Waypoints: []itineris.Coordinate{{Latitude: 48, Longitude: 1}},
		Profile:   itineris.ProfileDriving,
	})

	var contractErr *itineris.ContractError
	require.True(t, errors.As(err, &contractErr))
	assert.Empty(t, router.legs)
}
