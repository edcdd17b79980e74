// Package itineris holds the shared domain types for the route computation
// and geocoding resolution engine. Everything here is a per-request value
// type; nothing is persisted by the engine itself.
package itineris

import "fmt"

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Valid reports whether the coordinate is within WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// TravelProfile selects the mode of travel for route computation.
type TravelProfile string

const (
	ProfileDriving TravelProfile = "driving"
	ProfileCycling TravelProfile = "cycling"
	ProfileWalking TravelProfile = "walking"
)

// VehicleProfile describes the physical parameters of a vehicle. Zero-valued
// dimension fields mean "not provided"; use Normalized to apply the light-van
// defaults before rule evaluation.
type VehicleProfile struct {
	MassTonnes     float64 `json:"mass_tonnes"`
	HeightM        float64 `json:"height_m"`
	WidthM         float64 `json:"width_m"`
	LengthM        float64 `json:"length_m"`
	AxleLoadTonnes float64 `json:"axle_load_tonnes"`
	Hazmat         bool    `json:"hazmat"`
	AvoidTolls     bool    `json:"avoid_tolls"`
	AvoidFerries   bool    `json:"avoid_ferries"`
}

// HeavyVehicleThresholdTonnes is the mass above which a vehicle is routed
// through the specialized heavy-vehicle provider.
const HeavyVehicleThresholdTonnes = 19.0

// IsHeavy reports whether the profile qualifies for heavy-vehicle routing.
func (v VehicleProfile) IsHeavy() bool {
	return v.MassTonnes > HeavyVehicleThresholdTonnes
}

// Normalized returns a copy with absent fields replaced by light-van
// defaults: 3.5 t, 2.0 m high, 2.0 m wide, 5.0 m long.
func (v VehicleProfile) Normalized() VehicleProfile {
	if v.MassTonnes <= 0 {
		v.MassTonnes = 3.5
	}
	if v.HeightM <= 0 {
		v.HeightM = 2.0
	}
	if v.WidthM <= 0 {
		v.WidthM = 2.0
	}
	if v.LengthM <= 0 {
		v.LengthM = 5.0
	}
	return v
}

// RouteRequest is an ordered chain of at least two waypoints plus the travel
// profile and optional vehicle constraints.
type RouteRequest struct {
	Waypoints []Coordinate   `json:"waypoints"`
	Profile   TravelProfile  `json:"profile"`
	Vehicle   *VehicleProfile `json:"vehicle,omitempty"`
}

// Validate rejects requests that violate the caller contract: fewer than two
// waypoints or out-of-range coordinates.
func (r RouteRequest) Validate() error {
	if len(r.Waypoints) < 2 {
		return &ContractError{Reason: fmt.Sprintf("route request needs at least 2 waypoints, got %d", len(r.Waypoints))}
	}
	for i, w := range r.Waypoints {
		if !w.Valid() {
			return &ContractError{Reason: fmt.Sprintf("waypoint %d out of range: (%f, %f)", i, w.Latitude, w.Longitude)}
		}
	}
	return nil
}

// RouteSegment is one leg of a route between two consecutive waypoints.
type RouteSegment struct {
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
	Geometry        []Coordinate `json:"geometry"`
	Instruction     string       `json:"instruction,omitempty"`
}

// Route is the stitched result of a RouteRequest. Degraded means no real
// routing provider succeeded and the figures are straight-line estimates.
type Route struct {
	TotalDistanceMeters  float64        `json:"total_distance_meters"`
	TotalDurationSeconds float64        `json:"total_duration_seconds"`
	Segments             []RouteSegment `json:"segments"`
	Warnings             []string       `json:"warnings,omitempty"`
	Restrictions         []Restriction  `json:"restrictions,omitempty"`
	Degraded             bool           `json:"degraded"`
}

// RestrictionKind classifies a heavy-vehicle travel restriction.
type RestrictionKind string

const (
	RestrictionWeight   RestrictionKind = "weight"
	RestrictionHeight   RestrictionKind = "height"
	RestrictionWidth    RestrictionKind = "width"
	RestrictionLength   RestrictionKind = "length"
	RestrictionAxleLoad RestrictionKind = "axleLoad"
	RestrictionHazmat   RestrictionKind = "hazmat"
	RestrictionTunnel   RestrictionKind = "tunnel"
	RestrictionBridge   RestrictionKind = "bridge"
)

// Severity grades a restriction. An error-severity restriction is always
// paired with a human-readable warning describing the same condition.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Restriction is a structured travel restriction derived from the vehicle
// profile or from a known limited structure along the route.
type Restriction struct {
	Kind        RestrictionKind `json:"kind"`
	Description string          `json:"description"`
	Severity    Severity        `json:"severity"`
	Location    *Coordinate     `json:"location,omitempty"`
}

// PlaceMatch is the result of resolving free text to a coordinate.
// Approximate means the match came from the gazetteer or fuzzy matching
// rather than a structured address provider, or is the default fallback.
type PlaceMatch struct {
	Label       string     `json:"label"`
	Coordinate  Coordinate `json:"coordinate"`
	Approximate bool       `json:"approximate"`
	Population  int        `json:"population,omitempty"`
	PostalCode  string     `json:"postal_code,omitempty"`
}

// ContractError marks a caller bug (invalid arguments) as opposed to a
// provider outage, which the engine recovers from internally.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string {
	return "contract violation: " + e.Reason
}
