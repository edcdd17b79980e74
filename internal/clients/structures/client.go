// Package structures loads a KML feed of height- and weight-limited road
// structures (tunnels, bridges) and exposes them for route annotation.
package structures

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/lib/geo"
)

// Structure is one limited structure from the feed. Zero-valued limits mean
// the feed did not state one.
type Structure struct {
	Name          string
	Kind          itineris.RestrictionKind // tunnel or bridge
	Location      itineris.Coordinate
	MaxHeightM    float64
	MaxMassTonnes float64
}

// Client fetches and parses the structure feed.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

// NewClient creates a feed client for the given KML URL.
func NewClient(feedURL string) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads and parses the feed. Placemarks without usable
// coordinates or without any stated limit are dropped.
func (c *Client) Fetch(ctx context.Context) ([]Structure, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("feed error %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	return Parse(data)
}

// Parse extracts limited structures from raw KML.
func Parse(data []byte) ([]Structure, error) {
	var doc kmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse KML: %w", err)
	}

	var structures []Structure
	collect(doc.Document.Placemarks, &structures)
	collectFolders(doc.Document.Folders, &structures)
	return structures, nil
}

func collectFolders(folders []kmlFolder, out *[]Structure) {
	for _, f := range folders {
		collect(f.Placemarks, out)
		collectFolders(f.Folders, out)
	}
}

func collect(placemarks []kmlPlacemark, out *[]Structure) {
	for _, p := range placemarks {
		if s, ok := buildStructure(p); ok {
			*out = append(*out, s)
		}
	}
}

var (
	heightLimitRe = regexp.MustCompile(`(?i)hauteur[^0-9]*(\d+(?:[.,]\d+)?)`)
	massLimitRe   = regexp.MustCompile(`(?i)(?:tonnage|poids)[^0-9]*(\d+(?:[.,]\d+)?)`)
)

func buildStructure(p kmlPlacemark) (Structure, bool) {
	location, ok := parseCoordinates(p.Point.Coordinates)
	if !ok {
		return Structure{}, false
	}

	// Feed descriptions arrive HTML-escaped inside the XML.
	description := html.UnescapeString(p.Description)

	s := Structure{
		Name:          strings.TrimSpace(p.Name),
		Kind:          classify(p.Name + " " + description),
		Location:      location,
		MaxHeightM:    extractLimit(heightLimitRe, description),
		MaxMassTonnes: extractLimit(massLimitRe, description),
	}
	if s.MaxHeightM == 0 && s.MaxMassTonnes == 0 {
		return Structure{}, false
	}
	return s, true
}

// classify maps feed wording to a restriction kind. Low clearances with no
// recognizable keyword are treated as bridges.
func classify(text string) itineris.RestrictionKind {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "tunnel") {
		return itineris.RestrictionTunnel
	}
	return itineris.RestrictionBridge
}

func extractLimit(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCoordinates reads a KML coordinate tuple, "lon,lat[,alt]".
func parseCoordinates(raw string) (itineris.Coordinate, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) < 2 {
		return itineris.Coordinate{}, false
	}
	lon, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return itineris.Coordinate{}, false
	}
	c := itineris.Coordinate{Latitude: lat, Longitude: lon}
	return c, c.Valid()
}

// FilterNear keeps the structures within radiusMeters of any point of the
// given geometry.
func FilterNear(structures []Structure, geometry []itineris.Coordinate, radiusMeters float64) []Structure {
	var near []Structure
	for _, s := range structures {
		for _, p := range geometry {
			d, err := geo.Distance(s.Location, p)
			if err != nil {
				continue
			}
			if d <= radiusMeters {
				near = append(near, s)
				break
			}
		}
	}
	return near
}

type kmlDocument struct {
	XMLName  xml.Name `xml:"kml"`
	Document kmlBody  `xml:"Document"`
}

type kmlBody struct {
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlFolder struct {
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name        string   `xml:"name"`
	Description string   `xml:"description"`
	Point       kmlPoint `xml:"Point"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}
