package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/lib/gazetteer"
)

type fakeRemote struct {
	match *itineris.PlaceMatch
	calls int
}

func (f *fakeRemote) Resolve(ctx context.Context, query string) *itineris.PlaceMatch {
	f.calls++
	return f.match
}

func parisFallback() itineris.PlaceMatch {
	return itineris.PlaceMatch{Label: "Paris", Coordinate: itineris.Coordinate{Latitude: 48.8566, Longitude: 2.3522}}
}

func newPlacesService(t *testing.T, remote RemoteResolver) *PlacesService {
	t.Helper()
	gaz, err := gazetteer.Default()
	require.NoError(t, err)
	return NewPlacesService(gaz, remote, 3, parisFallback())
}

func TestResolveAddress_GazetteerHit(t *testing.T) {
	remote := &fakeRemote{}
	svc := newPlacesService(t, remote)

	match, err := svc.ResolveAddress(context.Background(), "École primaire Mondoubleau")
	require.NoError(t, err)

	assert.Equal(t, "Mondoubleau", match.Label)
	assert.InDelta(t, 47.9819, match.Coordinate.Latitude, 1e-4)
	assert.True(t, match.Approximate, "gazetteer matches are approximate")
	assert.Equal(t, "41170", match.PostalCode)
	assert.Zero(t, remote.calls, "local hit skips remote lookup")
}

func TestResolveAddress_RemoteFallback(t *testing.T) {
	remote := &fakeRemote{match: &itineris.PlaceMatch{
		Label:      "12 Rue des Acacias, Le Havre",
		Coordinate: itineris.Coordinate{Latitude: 49.4944, Longitude: 0.1079},
	}}
	svc := newPlacesService(t, remote)

	match, err := svc.ResolveAddress(context.Background(), "12 rue des acacias le havre")
	require.NoError(t, err)

	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, "12 Rue des Acacias, Le Havre", match.Label)
	assert.False(t, match.Approximate)
}

func TestResolveAddress_StrayTokenSkipsRemote(t *testing.T) {
	remote := &fakeRemote{}
	svc := newPlacesService(t, remote)

	match, err := svc.ResolveAddress(context.Background(), "xyzzt")
	require.NoError(t, err)

	assert.Zero(t, remote.calls, "single short token is not worth a remote call")
	assert.Equal(t, "Paris", match.Label)
	assert.True(t, match.Approximate)
}

func TestResolveAddress_NoRemoteConfigured(t *testing.T) {
	svc := newPlacesService(t, nil)

	match, err := svc.ResolveAddress(context.Background(), "quartier inconnu des brumes")
	require.NoError(t, err)

	assert.Equal(t, "Paris", match.Label)
	assert.True(t, match.Approximate)
}

func TestResolveAddress_TooShort(t *testing.T) {
	svc := newPlacesService(t, &fakeRemote{})

	_, err := svc.ResolveAddress(context.Background(), "ab")
	var contractErr *itineris.ContractError
	require.True(t, errors.As(err, &contractErr))

	// Punctuation-only queries normalize to nothing.
	_, err = svc.ResolveAddress(context.Background(), " .. , !! ")
	assert.True(t, errors.As(err, &contractErr))
}

func TestResolveAddress_FallbackIsACopy(t *testing.T) {
	svc := newPlacesService(t, nil)

	first, err := svc.ResolveAddress(context.Background(), "xyzzt")
	require.NoError(t, err)
	first.Label = "mutated"

	second, err := svc.ResolveAddress(context.Background(), "xyzzt")
	require.NoError(t, err)
	assert.Equal(t, "Paris", second.Label)
}
