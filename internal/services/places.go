package services

import (
	"context"
	"log"
	"strings"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/lib/gazetteer"
)

// remoteResolveLen is the minimum normalized query length for a
// single-token query to be worth a remote lookup; shorter stray tokens go
// straight to the default location.
const remoteResolveLen = 8

// RemoteResolver resolves free text through remote place providers.
// *routing.PlaceOrchestrator is the production implementation.
type RemoteResolver interface {
	Resolve(ctx context.Context, query string) *itineris.PlaceMatch
}

// PlacesService resolves free-text addresses to coordinates: local
// gazetteer first, then remote providers, then a configured default.
type PlacesService struct {
	gazetteer    *gazetteer.Gazetteer
	remote       RemoteResolver
	minQueryLen  int
	defaultPlace itineris.PlaceMatch
}

// NewPlacesService creates the place resolution service. remote may be nil
// to run fully offline.
func NewPlacesService(gaz *gazetteer.Gazetteer, remote RemoteResolver, minQueryLen int, defaultPlace itineris.PlaceMatch) *PlacesService {
	defaultPlace.Approximate = true
	return &PlacesService{
		gazetteer:    gaz,
		remote:       remote,
		minQueryLen:  minQueryLen,
		defaultPlace: defaultPlace,
	}
}

// NewDefaultPlacesService builds the service on the embedded gazetteer.
func NewDefaultPlacesService(remote RemoteResolver, minQueryLen int, defaultPlace itineris.PlaceMatch) (*PlacesService, error) {
	gaz, err := gazetteer.Default()
	if err != nil {
		return nil, err
	}
	return NewPlacesService(gaz, remote, minQueryLen, defaultPlace), nil
}

// ResolveAddress turns free text into a usable location. The only error is
// a contract violation on queries below the minimum length; provider
// outages and unknown places resolve to approximate matches instead.
func (s *PlacesService) ResolveAddress(ctx context.Context, text string) (*itineris.PlaceMatch, error) {
	normalized := gazetteer.Normalize(text)
	if len([]rune(normalized)) < s.minQueryLen {
		return nil, &itineris.ContractError{Reason: "address query too short: " + strings.TrimSpace(text)}
	}

	if entry, ok := s.gazetteer.Lookup(text); ok {
		log.Printf("[places] gazetteer hit for %q: %s", text, entry.Name)
		return &itineris.PlaceMatch{
			Label:       entry.Name,
			Coordinate:  entry.Coordinate(),
			Approximate: true,
			Population:  entry.Population,
			PostalCode:  entry.PostalCode,
		}, nil
	}

	if s.remote != nil && worthRemoteLookup(normalized) {
		return s.remote.Resolve(ctx, text), nil
	}

	log.Printf("[places] no match for %q, returning default location", text)
	fallback := s.defaultPlace
	return &fallback, nil
}

// worthRemoteLookup reports whether the query looks like a real address
// rather than a single stray token.
func worthRemoteLookup(normalized string) bool {
	return len(strings.Fields(normalized)) >= 2 || len([]rune(normalized)) >= remoteResolveLen
}
