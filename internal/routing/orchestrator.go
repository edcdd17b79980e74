package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/google/uuid"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/dispatch"
	"github.com/girard-solutions/itineris/internal/lib/geo"
)

// Average speeds used to estimate a duration when only a straight-line
// distance is available.
var fallbackSpeeds = map[itineris.TravelProfile]float64{
	itineris.ProfileDriving: 80.0 / 3.6, // m/s
	itineris.ProfileCycling: 16.0 / 3.6,
	itineris.ProfileWalking: 5.0 / 3.6,
}

// LegResult is the outcome of orchestrating one leg. Degraded means every
// provider failed and the segment is a straight-line estimate; Warnings
// carry the per-provider failure reasons either way.
type LegResult struct {
	Segment  *itineris.RouteSegment
	Provider string
	Warnings []string
	Degraded bool
}

// Orchestrator tries route providers in priority order and falls back to a
// local haversine estimate when the whole chain fails. Every provider call
// goes through the rate-limited cached dispatcher.
type Orchestrator struct {
	providers      []RouteProvider
	dispatcher     *dispatch.Dispatcher[*itineris.RouteSegment]
	attemptTimeout time.Duration
	totalTimeout   time.Duration
}

// NewOrchestrator builds an orchestrator over the given ordered providers.
// attemptTimeout bounds each provider call; totalTimeout bounds the whole
// chain so one slow provider cannot starve the fallbacks.
func NewOrchestrator(providers []RouteProvider, dispatcher *dispatch.Dispatcher[*itineris.RouteSegment], attemptTimeout, totalTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		providers:      providers,
		dispatcher:     dispatcher,
		attemptTimeout: attemptTimeout,
		totalTimeout:   totalTimeout,
	}
}

// ComputeLeg resolves one leg through the fallback chain. It always
// produces a segment: total provider exhaustion yields the local estimate
// with Degraded set.
func (o *Orchestrator) ComputeLeg(ctx context.Context, leg Leg) LegResult {
	requestID := uuid.NewString()[:8]

	ctx, cancel := context.WithTimeout(ctx, o.totalTimeout)
	defer cancel()

	key := legKey(leg)
	var reasons []string

	for _, provider := range o.providers {
		if provider.HeavyOnly() && !leg.Vehicle.IsHeavy() {
			continue
		}
		if ctx.Err() != nil {
			reasons = append(reasons, fmt.Sprintf("%s skipped: routing time budget exhausted", provider.Name()))
			continue
		}

		attemptCtx, attemptCancel := context.WithTimeout(ctx, o.attemptTimeout)
		segment, err := o.dispatcher.Call(attemptCtx, provider.Name(), key, func(callCtx context.Context) (*itineris.RouteSegment, error) {
			return provider.ComputeLeg(callCtx, leg)
		})
		attemptCancel()

		if err == nil && (segment == nil || len(segment.Geometry) == 0) {
			err = fmt.Errorf("empty route geometry")
		}
		if err != nil {
			reason := fmt.Sprintf("%s unavailable: %v", provider.Name(), err)
			reasons = append(reasons, reason)
			logging.Warnw(ctx, "route provider failed",
				"request", requestID, "provider", provider.Name(), "error", err)
			continue
		}

		// Hand out a copy; the cached segment is shared across callers.
		result := *segment
		result.Geometry = append([]itineris.Coordinate(nil), segment.Geometry...)
		return LegResult{Segment: &result, Provider: provider.Name(), Warnings: reasons}
	}

	estimate := o.estimateLeg(leg)
	reasons = append(reasons, "no routing provider available, using straight-line estimate")
	logging.Warnw(ctx, "all route providers failed, degrading to local estimate",
		"request", requestID, "providers", len(o.providers))

	return LegResult{Segment: estimate, Provider: "local", Warnings: reasons, Degraded: true}
}

// estimateLeg builds the straight-line fallback segment: haversine distance
// and a profile-dependent average speed.
func (o *Orchestrator) estimateLeg(leg Leg) *itineris.RouteSegment {
	distance, err := geo.Distance(leg.From, leg.To)
	if err != nil {
		distance = 0
	}

	speed, ok := fallbackSpeeds[leg.Profile]
	if !ok {
		speed = fallbackSpeeds[itineris.ProfileDriving]
	}

	return &itineris.RouteSegment{
		DistanceMeters:  distance,
		DurationSeconds: distance / speed,
		Geometry:        []itineris.Coordinate{leg.From, leg.To},
		Instruction:     "Straight-line estimate",
	}
}

// PlaceOrchestrator tries place providers in priority order, ending on a
// configured default location. Its contract is to always return something
// usable; confidence is signaled through Approximate, never an error.
type PlaceOrchestrator struct {
	providers      []PlaceProvider
	dispatcher     *dispatch.Dispatcher[*itineris.PlaceMatch]
	attemptTimeout time.Duration
	totalTimeout   time.Duration
	fallback       itineris.PlaceMatch
}

// NewPlaceOrchestrator builds the remote place lookup chain. fallback is
// returned, flagged approximate, when every provider fails.
func NewPlaceOrchestrator(providers []PlaceProvider, dispatcher *dispatch.Dispatcher[*itineris.PlaceMatch], attemptTimeout, totalTimeout time.Duration, fallback itineris.PlaceMatch) *PlaceOrchestrator {
	fallback.Approximate = true
	return &PlaceOrchestrator{
		providers:      providers,
		dispatcher:     dispatcher,
		attemptTimeout: attemptTimeout,
		totalTimeout:   totalTimeout,
		fallback:       fallback,
	}
}

// Resolve runs the fallback chain for a free-text query.
func (o *PlaceOrchestrator) Resolve(ctx context.Context, query string) *itineris.PlaceMatch {
	requestID := uuid.NewString()[:8]

	ctx, cancel := context.WithTimeout(ctx, o.totalTimeout)
	defer cancel()

	key := dispatch.TextKey(query)

	for _, provider := range o.providers {
		if ctx.Err() != nil {
			break
		}

		attemptCtx, attemptCancel := context.WithTimeout(ctx, o.attemptTimeout)
		match, err := o.dispatcher.Call(attemptCtx, provider.Name(), key, func(callCtx context.Context) (*itineris.PlaceMatch, error) {
			return provider.Search(callCtx, query)
		})
		attemptCancel()

		if err == nil && (match == nil || !match.Coordinate.Valid()) {
			err = fmt.Errorf("missing coordinates in response")
		}
		if err != nil {
			logging.Warnw(ctx, "place provider failed",
				"request", requestID, "provider", provider.Name(), "query", key, "error", err)
			continue
		}

		// Hand out a copy; the cached match is shared across callers.
		result := *match
		return &result
	}

	logging.Warnw(ctx, "all place providers failed, returning default location",
		"request", requestID, "query", key, "fallback", o.fallback.Label)

	fallback := o.fallback
	return &fallback
}
