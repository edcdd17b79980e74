// Package services holds the engine's inbound operations: route
// computation, stop-order optimization, restriction derivation, and
// address resolution. The embedding application constructs these once and
// calls them directly.
package services

import (
	"context"
	"fmt"
	"log"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/clients/structures"
	"github.com/girard-solutions/itineris/internal/dispatch"
	"github.com/girard-solutions/itineris/internal/lib/vehicle"
	"github.com/girard-solutions/itineris/internal/routing"
)

// StructureFeed fetches limited-structure data. *structures.Client is the
// production implementation.
type StructureFeed interface {
	Fetch(ctx context.Context) ([]structures.Structure, error)
}

// RoutingService computes routes: stitched provider legs, vehicle
// restriction analysis, and structure annotation for heavy vehicles.
type RoutingService struct {
	stitcher     *routing.Stitcher
	feed         StructureFeed
	feedCache    *dispatch.Dispatcher[[]structures.Structure]
	radiusMeters float64
}

// NewRoutingService creates the routing service. feed may be nil to disable
// structure annotation.
func NewRoutingService(stitcher *routing.Stitcher, feed StructureFeed, radiusMeters float64) *RoutingService {
	return &RoutingService{
		stitcher:     stitcher,
		feed:         feed,
		feedCache:    dispatch.New[[]structures.Structure](0),
		radiusMeters: radiusMeters,
	}
}

// ComputeRoute resolves a waypoint chain into a route. Provider outages
// degrade the result; only contract violations (too few waypoints, invalid
// coordinates) return an error.
func (s *RoutingService) ComputeRoute(ctx context.Context, req itineris.RouteRequest) (*itineris.Route, error) {
	log.Printf("[routes] computing route: %d waypoints, profile=%s", len(req.Waypoints), req.Profile)

	route, err := s.stitcher.Stitch(ctx, req)
	if err != nil {
		return nil, err
	}

	var profile itineris.VehicleProfile
	if req.Vehicle != nil {
		profile = *req.Vehicle
	}

	restrictions, warnings := vehicle.DeriveRestrictions(profile)
	route.Restrictions = append(route.Restrictions, restrictions...)
	route.Warnings = append(route.Warnings, warnings...)

	s.annotateStructures(ctx, route, profile.Normalized())

	if route.Degraded {
		log.Printf("[routes] route degraded, %d warnings", len(route.Warnings))
	}
	return route, nil
}

// annotateStructures adds restrictions for limited tunnels and bridges near
// the route that the vehicle exceeds. Best effort: a feed outage adds a
// warning, never fails the route.
func (s *RoutingService) annotateStructures(ctx context.Context, route *itineris.Route, profile itineris.VehicleProfile) {
	if s.feed == nil || !profile.IsHeavy() {
		return
	}

	all, err := s.feedCache.Call(ctx, "structures", "feed", func(callCtx context.Context) ([]structures.Structure, error) {
		return s.feed.Fetch(callCtx)
	})
	if err != nil {
		log.Printf("[routes] structure feed unavailable: %v", err)
		route.Warnings = append(route.Warnings, fmt.Sprintf("structure restrictions unavailable: %v", err))
		return
	}

	var geometry []itineris.Coordinate
	for _, seg := range route.Segments {
		geometry = append(geometry, seg.Geometry...)
	}

	for _, st := range structures.FilterNear(all, geometry, s.radiusMeters) {
		overHeight := st.MaxHeightM > 0 && profile.HeightM > st.MaxHeightM
		overMass := st.MaxMassTonnes > 0 && profile.MassTonnes > st.MaxMassTonnes
		if !overHeight && !overMass {
			continue
		}

		var description string
		if overHeight {
			description = fmt.Sprintf("%s: vehicle height %.2f m exceeds the %.2f m limit", st.Name, profile.HeightM, st.MaxHeightM)
		} else {
			description = fmt.Sprintf("%s: vehicle mass %.1f t exceeds the %.1f t limit", st.Name, profile.MassTonnes, st.MaxMassTonnes)
		}

		location := st.Location
		route.Restrictions = append(route.Restrictions, itineris.Restriction{
			Kind:        st.Kind,
			Description: description,
			Severity:    itineris.SeverityError,
			Location:    &location,
		})
		route.Warnings = append(route.Warnings, description)
	}
}

// OptimizeOrder reorders intermediate stops between a fixed start and end
// to approximately minimize total straight-line path length.
func (s *RoutingService) OptimizeOrder(start itineris.Coordinate, stops []itineris.Coordinate, end itineris.Coordinate) []itineris.Coordinate {
	chain := make([]itineris.Coordinate, 0, len(stops)+2)
	chain = append(chain, start)
	chain = append(chain, stops...)
	chain = append(chain, end)

	ordered := routing.OptimizeOrder(chain)
	return ordered[1 : len(ordered)-1]
}

// DeriveRestrictions evaluates a vehicle profile against the restriction
// rule table without computing a route.
func (s *RoutingService) DeriveRestrictions(profile itineris.VehicleProfile) ([]itineris.Restriction, []string) {
	return vehicle.DeriveRestrictions(profile)
}
