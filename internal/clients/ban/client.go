// Package ban adapts the French national address base (Base Adresse
// Nationale, api-adresse.data.gouv.fr) to the place provider interface.
package ban

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/girard-solutions/itineris"
)

// Client provides access to the BAN search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new BAN geocoding client.
func NewClient() *Client {
	return &Client{
		baseURL: "https://api-adresse.data.gouv.fr",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Name() string { return "ban" }

// Search geocodes a free-text query against the national address base.
func (c *Client) Search(ctx context.Context, query string) (*itineris.PlaceMatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/search/?"+params.Encode(), nil)
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

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(response.Features) == 0 {
		return nil, fmt.Errorf("no match for query")
	}

	feature := response.Features[0]
	if len(feature.Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("malformed geometry in response")
	}

	return &itineris.PlaceMatch{
		Label: feature.Properties.Label,
		Coordinate: itineris.Coordinate{
			// GeoJSON order is lon,lat.
			Latitude:  feature.Geometry.Coordinates[1],
			Longitude: feature.Geometry.Coordinates[0],
		},
		Population: feature.Properties.Population,
		PostalCode: feature.Properties.Postcode,
	}, nil
}

type searchResponse struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry   geometry   `json:"geometry"`
	Properties properties `json:"properties"`
}

type geometry struct {
	Coordinates []float64 `json:"coordinates"`
}

type properties struct {
	Label      string `json:"label"`
	Postcode   string `json:"postcode"`
	Population int    `json:"population"`
}
