// Package osrm adapts an OSRM HTTP server to the route provider interface.
// Works against the public demo server or a self-hosted instance.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/lib/geo"
	"github.com/girard-solutions/itineris/internal/routing"
)

// Client provides access to the OSRM route service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an OSRM client for the given server base URL, for
// example "https://router.project-osrm.org".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Name() string    { return "osrm" }
func (c *Client) HeavyOnly() bool { return false }

var osrmProfiles = map[itineris.TravelProfile]string{
	itineris.ProfileDriving: "driving",
	itineris.ProfileCycling: "cycling",
	itineris.ProfileWalking: "walking",
}

// ComputeLeg queries the route service for one leg. OSRM has no vehicle
// dimension support; the orchestrator places it behind the truck-aware
// providers for heavy vehicles.
func (c *Client) ComputeLeg(ctx context.Context, leg routing.Leg) (*itineris.RouteSegment, error) {
	profile, ok := osrmProfiles[leg.Profile]
	if !ok {
		return nil, fmt.Errorf("unsupported travel profile %q", leg.Profile)
	}

	// OSRM wants lon,lat order.
	endpoint := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=polyline",
		c.baseURL, profile,
		leg.From.Longitude, leg.From.Latitude, leg.To.Longitude, leg.To.Latitude)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode >= 500 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var response routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Code != "Ok" {
		return nil, fmt.Errorf("routing failed: %s", response.Code)
	}
	if len(response.Routes) == 0 {
		return nil, fmt.Errorf("no routes found in response")
	}

	route := response.Routes[0]
	geometry, err := geo.DecodePolyline(route.Geometry)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}

	return &itineris.RouteSegment{
		DistanceMeters:  route.Distance,
		DurationSeconds: route.Duration,
		Geometry:        geometry,
	}, nil
}

type routeResponse struct {
	Code   string      `json:"code"`
	Routes []wireRoute `json:"routes"`
}

type wireRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry string  `json:"geometry"`
}
