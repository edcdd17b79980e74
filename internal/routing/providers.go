// Package routing turns waypoint chains into usable routes by orchestrating
// an ordered list of provider adapters, stitching pairwise legs, and
// reordering intermediate stops. Provider order is configuration; the
// orchestration loop itself never changes when a provider is added or
// removed.
package routing

import (
	"context"
	"fmt"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/dispatch"
)

// Leg is a single origin/destination pair plus the travel constraints that
// apply to it. Vehicle is always normalized before a leg is built.
type Leg struct {
	From    itineris.Coordinate
	To      itineris.Coordinate
	Profile itineris.TravelProfile
	Vehicle itineris.VehicleProfile
}

// RouteProvider is one routing backend. Implementations normalize their
// provider's wire format into a RouteSegment and must report malformed
// payloads (no routes, empty geometry) as errors.
type RouteProvider interface {
	Name() string

	// HeavyOnly marks providers that are only worth querying for heavy
	// vehicles; the orchestrator skips them for light profiles.
	HeavyOnly() bool

	ComputeLeg(ctx context.Context, leg Leg) (*itineris.RouteSegment, error)
}

// PlaceProvider is one place-search backend.
type PlaceProvider interface {
	Name() string
	Search(ctx context.Context, query string) (*itineris.PlaceMatch, error)
}

// legKey builds the normalized cache key for a leg: rounded coordinates
// plus the routing-relevant vehicle constraints, so near-duplicate requests
// share a cache entry while different vehicles do not.
func legKey(leg Leg) string {
	return fmt.Sprintf("%s|%s|%.1ft|%.2fh|%.2fw|%.2fl|%.1fax|hz=%t|tolls=%t|ferries=%t",
		dispatch.CoordKey(leg.From, leg.To), leg.Profile,
		leg.Vehicle.MassTonnes, leg.Vehicle.HeightM, leg.Vehicle.WidthM,
		leg.Vehicle.LengthM, leg.Vehicle.AxleLoadTonnes,
		leg.Vehicle.Hazmat, leg.Vehicle.AvoidTolls, leg.Vehicle.AvoidFerries)
}
