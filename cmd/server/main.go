// Command server is a small embedding demo: it wires the engine together
// from configuration and exposes its operations over JSON HTTP.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/dpup/prefab"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/clients/ban"
	"github.com/girard-solutions/itineris/internal/clients/google"
	"github.com/girard-solutions/itineris/internal/clients/nominatim"
	"github.com/girard-solutions/itineris/internal/clients/osrm"
	"github.com/girard-solutions/itineris/internal/clients/structures"
	"github.com/girard-solutions/itineris/internal/clients/tomtom"
	"github.com/girard-solutions/itineris/internal/config"
	"github.com/girard-solutions/itineris/internal/dispatch"
	"github.com/girard-solutions/itineris/internal/routing"
	"github.com/girard-solutions/itineris/internal/services"
)

func main() {
	cfg := loadConfig()

	// Route providers, in configured fallback order.
	routeDispatcher := dispatch.New[*itineris.RouteSegment](100 * time.Millisecond)
	routeProviders := buildRouteProviders(cfg, routeDispatcher)
	orchestrator := routing.NewOrchestrator(routeProviders, routeDispatcher,
		cfg.Routing.AttemptTimeout, cfg.Routing.TotalTimeout)

	// Place providers.
	placeDispatcher := dispatch.New[*itineris.PlaceMatch](100 * time.Millisecond)
	placeProviders := buildPlaceProviders(cfg, placeDispatcher)
	placeOrchestrator := routing.NewPlaceOrchestrator(placeProviders, placeDispatcher,
		cfg.Places.AttemptTimeout, cfg.Places.TotalTimeout, cfg.Places.DefaultPlace.Match())

	var feed services.StructureFeed
	if cfg.Structures.FeedURL != "" {
		feed = structures.NewClient(cfg.Structures.FeedURL)
	}

	routingService := services.NewRoutingService(routing.NewStitcher(orchestrator), feed, cfg.Structures.RadiusMeters)
	placesService, err := services.NewDefaultPlacesService(placeOrchestrator, cfg.Places.MinQueryLen, cfg.Places.DefaultPlace.Match())
	if err != nil {
		log.Fatalf("Failed to load gazetteer: %v", err)
	}

	log.Printf("Route engine starting: %d route providers, %d place providers",
		len(routeProviders), len(placeProviders))

	server := prefab.New(
		prefab.WithHTTPHandlerFunc("/", homepageHandler),
		prefab.WithHTTPHandlerFunc("/api/v1/routes", computeRouteHandler(routingService)),
		prefab.WithHTTPHandlerFunc("/api/v1/places", resolvePlaceHandler(placesService)),
		prefab.WithHTTPHandlerFunc("/api/v1/restrictions", restrictionsHandler(routingService)),
		prefab.WithHTTPHandlerFunc("/api/v1/debug/cache", cacheStatsHandler(routeDispatcher, placeDispatcher)),
	)

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig starts from defaults and overlays Prefab's config sections
// (prefab.yaml and PF__ environment variables).
func loadConfig() *config.Config {
	cfg := config.DefaultConfig()

	if err := prefab.Config.Unmarshal("routing", &cfg.Routing); err != nil {
		log.Fatalf("Failed to unmarshal routing section: %v", err)
	}
	if err := prefab.Config.Unmarshal("places", &cfg.Places); err != nil {
		log.Fatalf("Failed to unmarshal places section: %v", err)
	}
	if err := prefab.Config.Unmarshal("structures", &cfg.Structures); err != nil {
		log.Fatalf("Failed to unmarshal structures section: %v", err)
	}

	return cfg
}

func buildRouteProviders(cfg *config.Config, d *dispatch.Dispatcher[*itineris.RouteSegment]) []routing.RouteProvider {
	var providers []routing.RouteProvider
	for _, name := range cfg.Routing.ProviderOrder {
		switch name {
		case "tomtom":
			if cfg.Routing.TomTom.APIKey == "" {
				log.Printf("Skipping tomtom: no API key configured")
				continue
			}
			providers = append(providers, tomtom.NewClient(cfg.Routing.TomTom.APIKey))
			d.SetInterval("tomtom", cfg.Routing.TomTom.RateInterval)
		case "google":
			if cfg.Routing.Google.APIKey == "" {
				log.Printf("Skipping google: no API key configured")
				continue
			}
			providers = append(providers, google.NewClient(cfg.Routing.Google.APIKey))
			d.SetInterval("google", cfg.Routing.Google.RateInterval)
		case "osrm":
			providers = append(providers, osrm.NewClient(cfg.Routing.OSRM.BaseURL))
			d.SetInterval("osrm", cfg.Routing.OSRM.RateInterval)
		default:
			log.Fatalf("Unknown route provider %q in provider_order", name)
		}
	}
	return providers
}

func buildPlaceProviders(cfg *config.Config, d *dispatch.Dispatcher[*itineris.PlaceMatch]) []routing.PlaceProvider {
	var providers []routing.PlaceProvider
	for _, name := range cfg.Places.ProviderOrder {
		switch name {
		case "ban":
			providers = append(providers, ban.NewClient())
			d.SetInterval("ban", cfg.Places.BAN.RateInterval)
		case "nominatim":
			providers = append(providers, nominatim.NewClient())
			d.SetInterval("nominatim", cfg.Places.Nominatim.RateInterval)
		default:
			log.Fatalf("Unknown place provider %q in provider_order", name)
		}
	}
	return providers
}

func computeRouteHandler(svc *services.RoutingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req itineris.RouteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Profile == "" {
			req.Profile = itineris.ProfileDriving
		}

		route, err := svc.ComputeRoute(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, route)
	}
}

func resolvePlaceHandler(svc *services.PlacesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		match, err := svc.ResolveAddress(r.Context(), query)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, match)
	}
}

func restrictionsHandler(svc *services.RoutingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var profile itineris.VehicleProfile
		if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}

		restrictions, warnings := svc.DeriveRestrictions(profile)
		writeJSON(w, map[string]interface{}{
			"restrictions": restrictions,
			"warnings":     warnings,
		})
	}
}

func cacheStatsHandler(routes *dispatch.Dispatcher[*itineris.RouteSegment], places *dispatch.Dispatcher[*itineris.PlaceMatch]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"routes": routes.CacheStats(),
			"places": places.CacheStats(),
		})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeError maps contract violations to 400 and everything else to 500.
// Provider outages never reach this path; they degrade the result instead.
func writeError(w http.ResponseWriter, err error) {
	var contractErr *itineris.ContractError
	if errors.As(err, &contractErr) {
		http.Error(w, contractErr.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// homepageHandler serves a plain-text index at the server root.
func homepageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, `itineris route engine

Endpoints:
  POST /api/v1/routes        - compute a route from a waypoint chain
  GET  /api/v1/places?q=...  - resolve free text to a coordinate
  POST /api/v1/restrictions  - evaluate a vehicle profile
  GET  /api/v1/debug/cache   - provider cache statistics
`)
}
