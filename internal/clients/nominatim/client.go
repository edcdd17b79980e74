// Package nominatim adapts the OpenStreetMap Nominatim search API to the
// place provider interface. The public instance requires an identifying
// User-Agent and at most one request per second; the dispatcher enforces
// the spacing.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/girard-solutions/itineris"
)

// userAgent identifies this application to the Nominatim usage policy.
const userAgent = "itineris-route-engine/1.0"

// Client provides access to Nominatim search.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Nominatim geocoding client.
func NewClient() *Client {
	return &Client{
		baseURL: "https://nominatim.openstreetmap.org",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) Name() string { return "nominatim" }

// Search geocodes a free-text query against OpenStreetMap data.
func (c *Client) Search(ctx context.Context, query string) (*itineris.PlaceMatch, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

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

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no match for query")
	}

	result := results[0]
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed latitude %q: %w", result.Lat, err)
	}
	lon, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed longitude %q: %w", result.Lon, err)
	}

	return &itineris.PlaceMatch{
		Label:      result.DisplayName,
		Coordinate: itineris.Coordinate{Latitude: lat, Longitude: lon},
	}, nil
}

// searchResult is Nominatim's wire format; coordinates arrive as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
