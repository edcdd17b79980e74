// Package google adapts the Google Routes API v2 to the route provider
// interface.
package google

import (
	"bytes"
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

// Client provides access to Google Routes API v2.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Google Routes API client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://routes.googleapis.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Name() string    { return "google" }
func (c *Client) HeavyOnly() bool { return false }

var travelModes = map[itineris.TravelProfile]string{
	itineris.ProfileDriving: "DRIVE",
	itineris.ProfileCycling: "BICYCLE",
	itineris.ProfileWalking: "WALK",
}

// ComputeLeg performs coordinate-based route computation for one leg.
func (c *Client) ComputeLeg(ctx context.Context, leg routing.Leg) (*itineris.RouteSegment, error) {
	mode, ok := travelModes[leg.Profile]
	if !ok {
		return nil, fmt.Errorf("unsupported travel profile %q", leg.Profile)
	}

	requestBody := map[string]interface{}{
		"origin": map[string]interface{}{
			"location": map[string]interface{}{
				"latLng": map[string]interface{}{
					"latitude":  leg.From.Latitude,
					"longitude": leg.From.Longitude,
				},
			},
		},
		"destination": map[string]interface{}{
			"location": map[string]interface{}{
				"latLng": map[string]interface{}{
					"latitude":  leg.To.Latitude,
					"longitude": leg.To.Longitude,
				},
			},
		},
		"travelMode": mode,
	}
	if mode == "DRIVE" {
		requestBody["routingPreference"] = "TRAFFIC_AWARE"
		requestBody["routeModifiers"] = map[string]interface{}{
			"avoidTolls":   leg.Vehicle.AvoidTolls,
			"avoidFerries": leg.Vehicle.AvoidFerries,
		}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/directions/v2:computeRoutes", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The field mask is mandatory; the API rejects requests without it.
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var response routesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Routes) == 0 {
		return nil, fmt.Errorf("no routes found in response")
	}

	return buildSegment(response.Routes[0])
}

func buildSegment(route route) (*itineris.RouteSegment, error) {
	durationSeconds, err := parseDuration(route.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration: %w", err)
	}

	geometry, err := geo.DecodePolyline(route.Polyline.EncodedPolyline)
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	return &itineris.RouteSegment{
		DistanceMeters:  float64(route.DistanceMeters),
		DurationSeconds: float64(durationSeconds),
		Geometry:        geometry,
	}, nil
}

// parseDuration parses Google's duration format like "450s" to seconds.
func parseDuration(durationStr string) (int32, error) {
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	if durationStr[len(durationStr)-1] == 's' {
		durationStr = durationStr[:len(durationStr)-1]
	}

	var seconds int32
	_, err := fmt.Sscanf(durationStr, "%d", &seconds)
	return seconds, err
}

type routesResponse struct {
	Routes []route `json:"routes"`
}

type route struct {
	Duration       string       `json:"duration"`
	DistanceMeters int32        `json:"distanceMeters"`
	Polyline       wirePolyline `json:"polyline"`
}

type wirePolyline struct {
	EncodedPolyline string `json:"encodedPolyline"`
}
