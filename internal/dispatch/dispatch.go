// Package dispatch wraps outbound provider calls with a minimum-interval
// throttle and a keyed result memo. Rate limiting is per provider identity:
// calls to different providers never wait on each other.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/girard-solutions/itineris"
	"github.com/girard-solutions/itineris/internal/cache"
)

// Dispatcher throttles and memoizes outbound calls producing values of
// type V. Successful results are cached under (providerID, requestKey);
// failures are never cached, so a failed call is retryable with the same
// key.
type Dispatcher[V any] struct {
	cache *cache.Cache[V]

	mu              sync.Mutex
	next            map[string]time.Time
	intervals       map[string]time.Duration
	defaultInterval time.Duration
}

// New creates a Dispatcher with the given default spacing between calls to
// the same provider. Per-provider intervals can be set with SetInterval.
func New[V any](defaultInterval time.Duration) *Dispatcher[V] {
	return &Dispatcher[V]{
		cache:           cache.New[V](),
		next:            make(map[string]time.Time),
		intervals:       make(map[string]time.Duration),
		defaultInterval: defaultInterval,
	}
}

// SetInterval overrides the minimum spacing for one provider.
func (d *Dispatcher[V]) SetInterval(providerID string, interval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.intervals[providerID] = interval
}

// Call returns the cached result for (providerID, requestKey) if present.
// Otherwise it waits until the provider's rate-limit slot is available,
// invokes op, caches a successful result, and returns it. Cancelling ctx
// while waiting abandons the call; an op already in flight sees the same
// ctx, so a cancelled caller never has its result written to the cache.
func (d *Dispatcher[V]) Call(ctx context.Context, providerID, requestKey string, op func(context.Context) (V, error)) (V, error) {
	var zero V
	key := cacheKey(providerID, requestKey)

	if value, ok := d.cache.Get(key); ok {
		return value, nil
	}

	// Reserve a dispatch slot. The lock is held only to compute the slot;
	// the wait itself happens outside it so other providers proceed freely.
	d.mu.Lock()
	interval := d.defaultInterval
	if custom, ok := d.intervals[providerID]; ok {
		interval = custom
	}
	now := time.Now()
	at := d.next[providerID]
	if at.Before(now) {
		at = now
	}
	d.next[providerID] = at.Add(interval)
	d.mu.Unlock()

	if wait := time.Until(at); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			// Give the reserved slot back so the abandoned wait does not
			// delay the provider's next real call. Only roll back if no
			// later caller has reserved past it.
			d.mu.Lock()
			if d.next[providerID].Equal(at.Add(interval)) {
				d.next[providerID] = at
			}
			d.mu.Unlock()
			return zero, ctx.Err()
		}
	}

	// Another caller may have populated the key while we waited.
	if value, ok := d.cache.Get(key); ok {
		return value, nil
	}

	value, err := op(ctx)
	if err != nil {
		return zero, err
	}

	d.cache.Set(key, value)
	return value, nil
}

// ClearCache empties cached results. An empty providerID clears everything;
// otherwise only that provider's entries are removed.
func (d *Dispatcher[V]) ClearCache(providerID string) {
	if providerID == "" {
		d.cache.Clear()
		return
	}
	d.cache.ClearPrefix(providerID + "|")
}

// CacheStats exposes the underlying cache state for observability.
func (d *Dispatcher[V]) CacheStats() cache.Stats {
	return d.cache.Stats()
}

func cacheKey(providerID, requestKey string) string {
	return providerID + "|" + requestKey
}

// CoordKey normalizes a coordinate sequence into a request key, rounding to
// six decimal degrees so near-duplicate requests hit the same entry.
func CoordKey(points ...itineris.Coordinate) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
	}
	return strings.Join(parts, ";")
}

// TextKey normalizes a free-text query into a request key: lowercase,
// trimmed, inner whitespace collapsed.
func TextKey(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
