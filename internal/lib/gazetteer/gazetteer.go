// Package gazetteer resolves free-text place references against a small
// built-in table of known places. The table is a data asset embedded at
// build time so it can grow without touching the matching logic.
package gazetteer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "embed"

	"github.com/girard-solutions/itineris"
)

//go:embed places.json
var rawPlaces []byte

// Entry is one known place.
type Entry struct {
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Population int     `json:"population"`
	PostalCode string  `json:"postal_code"`
}

// Coordinate returns the entry's location.
func (e Entry) Coordinate() itineris.Coordinate {
	return itineris.Coordinate{Latitude: e.Latitude, Longitude: e.Longitude}
}

// indexed pairs an entry with its normalized key and key components.
type indexed struct {
	entry      Entry
	key        string
	components []string
}

// Gazetteer holds the place table in a fixed lookup order.
type Gazetteer struct {
	places []indexed
}

// fuzzyThreshold is the minimum positional similarity for a fuzzy word
// match.
const fuzzyThreshold = 0.8

// minComponentLen skips articles and other short name components during
// per-word matching ("la", "le", "sur").
const minComponentLen = 3

var (
	defaultOnce sync.Once
	defaultGaz  *Gazetteer
	defaultErr  error
)

// Default returns the gazetteer built from the embedded place table.
func Default() (*Gazetteer, error) {
	defaultOnce.Do(func() {
		defaultGaz, defaultErr = Parse(rawPlaces)
	})
	return defaultGaz, defaultErr
}

// Parse builds a gazetteer from a JSON array of entries. Longer keys are
// ordered first so containment matches prefer the most specific name, and
// the order is otherwise alphabetical so lookups are reproducible.
func Parse(data []byte) (*Gazetteer, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("gazetteer: failed to parse place table: %w", err)
	}

	places := make([]indexed, 0, len(entries))
	for _, e := range entries {
		key := Normalize(e.Name)
		if key == "" {
			continue
		}
		places = append(places, indexed{
			entry:      e,
			key:        key,
			components: strings.Fields(key),
		})
	}

	sort.Slice(places, func(i, j int) bool {
		if len(places[i].key) != len(places[j].key) {
			return len(places[i].key) > len(places[j].key)
		}
		return places[i].key < places[j].key
	})

	return &Gazetteer{places: places}, nil
}

// Len returns the number of entries.
func (g *Gazetteer) Len() int {
	return len(g.places)
}

// Lookup resolves free text to a known place. It tries, in order of
// specificity: containment of a full place key in the normalized text,
// per-word exact matches against place-name components, and per-word fuzzy
// matches tolerating typos. The first stage that produces a hit wins; ties
// within a stage go to the entry ordered first.
func (g *Gazetteer) Lookup(text string) (Entry, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return Entry{}, false
	}

	for _, p := range g.places {
		if strings.Contains(normalized, p.key) {
			return p.entry, true
		}
	}

	words := strings.Fields(normalized)

	for _, p := range g.places {
		for _, component := range p.components {
			if len(component) < minComponentLen {
				continue
			}
			for _, word := range words {
				if word == component {
					return p.entry, true
				}
			}
		}
	}

	for _, p := range g.places {
		for _, component := range p.components {
			if len(component) < minComponentLen {
				continue
			}
			for _, word := range words {
				if Similarity(word, component) >= fuzzyThreshold {
					return p.entry, true
				}
			}
		}
	}

	return Entry{}, false
}
