// Package config defines the engine configuration supplied by the embedding
// application: provider priority order, per-provider credentials and
// rate-limit spacing, time budgets, and the place-resolution fallbacks.
package config

import (
	"time"

	"github.com/girard-solutions/itineris"
)

// Config is the complete engine configuration.
type Config struct {
	Routing    RoutingConfig    `yaml:"routing"`
	Places     PlacesConfig     `yaml:"places"`
	Structures StructuresConfig `yaml:"structures"`
}

// RoutingConfig holds route computation settings.
type RoutingConfig struct {
	// ProviderOrder is the fallback chain, most preferred first. Known
	// names: tomtom, google, osrm.
	ProviderOrder []string `yaml:"provider_order"`

	// AttemptTimeout bounds each provider call; TotalTimeout bounds the
	// whole fallback chain and should be a small multiple of it.
	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	TotalTimeout   time.Duration `yaml:"total_timeout"`

	TomTom ProviderConfig `yaml:"tomtom"`
	Google ProviderConfig `yaml:"google"`
	OSRM   OSRMConfig     `yaml:"osrm"`
}

// ProviderConfig holds settings for one keyed provider.
type ProviderConfig struct {
	APIKey       string        `yaml:"api_key"`
	RateInterval time.Duration `yaml:"rate_interval"`
}

// OSRMConfig holds settings for an OSRM server, which needs no key.
type OSRMConfig struct {
	BaseURL      string        `yaml:"base_url"`
	RateInterval time.Duration `yaml:"rate_interval"`
}

// PlacesConfig holds address resolution settings.
type PlacesConfig struct {
	// ProviderOrder is the remote fallback chain. Known names: ban,
	// nominatim.
	ProviderOrder []string `yaml:"provider_order"`

	AttemptTimeout time.Duration `yaml:"attempt_timeout"`
	TotalTimeout   time.Duration `yaml:"total_timeout"`

	// MinQueryLen is the minimum normalized query length; shorter queries
	// are rejected as contract violations.
	MinQueryLen int `yaml:"min_query_len"`

	BAN       ProviderConfig `yaml:"ban"`
	Nominatim ProviderConfig `yaml:"nominatim"`

	// DefaultPlace is returned, flagged approximate, when every lookup
	// stage fails.
	DefaultPlace PlaceConfig `yaml:"default_place"`
}

// PlaceConfig is a named location in YAML form.
type PlaceConfig struct {
	Label     string  `yaml:"label"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Match converts the configured place to a PlaceMatch.
func (p PlaceConfig) Match() itineris.PlaceMatch {
	return itineris.PlaceMatch{
		Label:       p.Label,
		Coordinate:  itineris.Coordinate{Latitude: p.Latitude, Longitude: p.Longitude},
		Approximate: true,
	}
}

// StructuresConfig holds the limited-structure feed settings. An empty URL
// disables structure annotation.
type StructuresConfig struct {
	FeedURL      string  `yaml:"feed_url"`
	RadiusMeters float64 `yaml:"radius_meters"`
}

// DefaultConfig returns a working configuration. API keys must still be
// supplied for the keyed providers; providers without credentials simply
// fail over to the next in the chain.
func DefaultConfig() *Config {
	return &Config{
		Routing: RoutingConfig{
			ProviderOrder:  []string{"tomtom", "google", "osrm"},
			AttemptTimeout: 10 * time.Second,
			TotalTimeout:   30 * time.Second,
			TomTom: ProviderConfig{
				RateInterval: 200 * time.Millisecond,
			},
			Google: ProviderConfig{
				RateInterval: 100 * time.Millisecond,
			},
			OSRM: OSRMConfig{
				BaseURL:      "https://router.project-osrm.org",
				RateInterval: time.Second, // public demo server courtesy
			},
		},
		Places: PlacesConfig{
			ProviderOrder:  []string{"ban", "nominatim"},
			AttemptTimeout: 8 * time.Second,
			TotalTimeout:   20 * time.Second,
			MinQueryLen:    3,
			BAN: ProviderConfig{
				RateInterval: 100 * time.Millisecond,
			},
			Nominatim: ProviderConfig{
				RateInterval: time.Second, // usage policy: max 1 req/s
			},
			DefaultPlace: PlaceConfig{
				Label:     "Paris",
				Latitude:  48.8566,
				Longitude: 2.3522,
			},
		},
		Structures: StructuresConfig{
			RadiusMeters: 250,
		},
	}
}
