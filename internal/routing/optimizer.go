package routing

import (
	"math"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/lib/geo"
)

// OptimizeOrder reorders the intermediate stops of a waypoint chain with a
// nearest-neighbor pass, keeping the first and last waypoints fixed. Ties
// resolve to the earlier input position, so the result is deterministic for
// a given input. The heuristic carries no optimality guarantee.
func OptimizeOrder(waypoints []itineris.Coordinate) []itineris.Coordinate {
	out := make([]itineris.Coordinate, len(waypoints))
	copy(out, waypoints)
	if len(waypoints) <= 3 {
		return out
	}

	stops := waypoints[1 : len(waypoints)-1]
	visited := make([]bool, len(stops))
	current := waypoints[0]

	for i := 0; i < len(stops); i++ {
		best := -1
		bestDist := math.Inf(1)
		for j, stop := range stops {
			if visited[j] {
				continue
			}
			d := straightDistance(current, stop)
			if d < bestDist {
				best = j
				bestDist = d
			}
		}
		visited[best] = true
		out[i+1] = stops[best]
		current = stops[best]
	}

	return out
}

// straightDistance is the haversine distance with invalid coordinates
// pushed to the end of the ordering.
func straightDistance(a, b itineris.Coordinate) float64 {
	d, err := geo.Distance(a, b)
	if err != nil {
		return math.Inf(1)
	}
	return d
}
