// Package tomtom adapts the TomTom Routing API to the route provider
// interface. It is the only adapter that understands truck parameters, so
// the orchestrator reserves it for heavy vehicles.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/routing"
)

// Client provides access to the TomTom calculateRoute endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new TomTom routing client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.tomtom.com",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Name() string    { return "tomtom" }
func (c *Client) HeavyOnly() bool { return true }

// ComputeLeg performs truck-aware route computation for one leg. Vehicle
// dimensions are passed through so TomTom avoids roads the vehicle cannot
// legally use.
func (c *Client) ComputeLeg(ctx context.Context, leg routing.Leg) (*itineris.RouteSegment, error) {
	locations := fmt.Sprintf("%f,%f:%f,%f",
		leg.From.Latitude, leg.From.Longitude, leg.To.Latitude, leg.To.Longitude)

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("travelMode", "truck")
	params.Set("routeType", "fastest")
	params.Set("vehicleWeight", fmt.Sprintf("%d", int(leg.Vehicle.MassTonnes*1000)))
	params.Set("vehicleHeight", fmt.Sprintf("%.2f", leg.Vehicle.HeightM))
	params.Set("vehicleWidth", fmt.Sprintf("%.2f", leg.Vehicle.WidthM))
	params.Set("vehicleLength", fmt.Sprintf("%.2f", leg.Vehicle.LengthM))
	if leg.Vehicle.AxleLoadTonnes > 0 {
		params.Set("vehicleAxleWeight", fmt.Sprintf("%d", int(leg.Vehicle.AxleLoadTonnes*1000)))
	}
	if leg.Vehicle.Hazmat {
		params.Set("vehicleLoadType", "otherHazmatGeneral")
	}
	if leg.Vehicle.AvoidTolls {
		params.Add("avoid", "tollRoads")
	}
	if leg.Vehicle.AvoidFerries {
		params.Add("avoid", "ferries")
	}

	endpoint := fmt.Sprintf("%s/routing/1/calculateRoute/%s/json?%s", c.baseURL, url.PathEscape(locations), params.Encode())

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
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var response routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Routes) == 0 {
		return nil, fmt.Errorf("no routes found in response")
	}

	return buildSegment(response.Routes[0]), nil
}

func buildSegment(r wireRoute) *itineris.RouteSegment {
	var geometry []itineris.Coordinate
	for _, l := range r.Legs {
		for _, p := range l.Points {
			geometry = append(geometry, itineris.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude})
		}
	}

	return &itineris.RouteSegment{
		DistanceMeters:  float64(r.Summary.LengthInMeters),
		DurationSeconds: float64(r.Summary.TravelTimeInSeconds),
		Geometry:        geometry,
	}
}

type routeResponse struct {
	Routes []wireRoute `json:"routes"`
}

type wireRoute struct {
	Summary wireSummary `json:"summary"`
	Legs    []wireLeg   `json:"legs"`
}

type wireSummary struct {
	LengthInMeters      int `json:"lengthInMeters"`
	TravelTimeInSeconds int `json:"travelTimeInSeconds"`
}

type wireLeg struct {
	Points []wirePoint `json:"points"`
}

type wirePoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
