package osrm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/routing"
)

// Encodes (38.5,-120.2), (40.7,-120.95), (43.252,-126.453).
const testPolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func testClient(srv *httptest.Server) *Client {
	return &Client{baseURL: srv.URL, httpClient: srv.Client()}
}

func testLeg() routing.Leg {
	return routing.Leg{
		From:    itineris.Coordinate{Latitude: 48.8566, Longitude: 2.3522},
		To:      itineris.Coordinate{Latitude: 43.2965, Longitude: 5.3698},
		Profile: itineris.ProfileDriving,
	}
}

func TestComputeLeg_Success(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":775000.5,"duration":27000.2,"geometry":"` + testPolyline + `"}]}`))
	}))
	defer srv.Close()

	segment, err := testClient(srv).ComputeLeg(context.Background(), testLeg())
	require.NoError(t, err)

	assert.Equal(t, 775000.5, segment.DistanceMeters)
	assert.Equal(t, 27000.2, segment.DurationSeconds)
	require.Len(t, segment.Geometry, 3)

	// OSRM takes lon,lat pairs in the path.
	assert.True(t, strings.HasPrefix(path, "/route/v1/driving/2.352200,48.856600;"), path)
}

func TestComputeLeg_ProfileMapping(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":10,"duration":5,"geometry":"` + testPolyline + `"}]}`))
	}))
	defer srv.Close()

	leg := testLeg()
	leg.Profile = itineris.ProfileWalking
	_, err := testClient(srv).ComputeLeg(context.Background(), leg)
	require.NoError(t, err)
	assert.Contains(t, path, "/route/v1/walking/")
}

func TestComputeLeg_NotOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv).ComputeLeg(context.Background(), testLeg())
	assert.ErrorContains(t, err, "NoRoute")
}

func TestComputeLeg_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv).ComputeLeg(context.Background(), testLeg())
	assert.ErrorContains(t, err, "API error 500")
}

func TestComputeLeg_UnsupportedProfile(t *testing.T) {
	leg := testLeg()
	leg.Profile = "submarine"

	_, err := NewClient("http://localhost").ComputeLeg(context.Background(), leg)
	assert.ErrorContains(t, err, "unsupported travel profile")
}
