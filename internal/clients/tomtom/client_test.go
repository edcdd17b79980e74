package tomtom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/routing"
)

const routeFixture = `{
	"routes": [{
		"summary": {"lengthInMeters": 120500, "travelTimeInSeconds": 5400},
		"legs": [{"points": [
			{"latitude": 47.9819, "longitude": 0.8997},
			{"latitude": 47.8000, "longitude": 1.0000},
			{"latitude": 47.5861, "longitude": 1.3359}
		]}]
	}]
}`

func testClient(srv *httptest.Server) *Client {
	return &Client{apiKey: "test-key", baseURL: srv.URL, httpClient: srv.Client()}
}

func truckLeg() routing.Leg {
	return routing.Leg{
		From:    itineris.Coordinate{Latitude: 47.9819, Longitude: 0.8997},
		To:      itineris.Coordinate{Latitude: 47.5861, Longitude: 1.3359},
		Profile: itineris.ProfileDriving,
		Vehicle: itineris.VehicleProfile{MassTonnes: 32, HeightM: 4.0, WidthM: 2.5, LengthM: 16.0},
	}
}

func TestComputeLeg_Success(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(routeFixture))
	}))
	defer srv.Close()

	segment, err := testClient(srv).ComputeLeg(context.Background(), truckLeg())
	require.NoError(t, err)

	assert.Equal(t, 120500.0, segment.DistanceMeters)
	assert.Equal(t, 5400.0, segment.DurationSeconds)
	require.Len(t, segment.Geometry, 3)
	assert.Equal(t, 47.9819, segment.Geometry[0].Latitude)

	assert.Equal(t, "truck", query.Get("travelMode"))
	assert.Equal(t, "32000", query.Get("vehicleWeight"))
	assert.Equal(t, "4.00", query.Get("vehicleHeight"))
	assert.Equal(t, "test-key", query.Get("key"))
}

func TestComputeLeg_HazmatLoadType(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(routeFixture))
	}))
	defer srv.Close()

	leg := truckLeg()
	leg.Vehicle.Hazmat = true
	leg.Vehicle.AvoidTolls = true
	_, err := testClient(srv).ComputeLeg(context.Background(), leg)
	require.NoError(t, err)

	assert.Equal(t, "otherHazmatGeneral", query.Get("vehicleLoadType"))
	assert.Contains(t, query["avoid"], "tollRoads")
}

func TestComputeLeg_NoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).ComputeLeg(context.Background(), truckLeg())
	assert.ErrorContains(t, err, "no routes")
}

func TestComputeLeg_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv).ComputeLeg(context.Background(), truckLeg())
	assert.ErrorContains(t, err, "API error 403")
}

func TestHeavyOnly(t *testing.T) {
	assert.True(t, NewClient("k").HeavyOnly())
}
