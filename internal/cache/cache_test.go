package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string]()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", "first")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", v)

	// Overwrite replaces the value.
	c.Set("a", "second")
	v, _ = c.Get("a")
	assert.Equal(t, "second", v)
}

func TestCache_EntriesPersistUntilClear(t *testing.T) {
	c := New[int]()
	c.Set("k", 42)

	entry, ok := c.GetEntry("k")
	require.True(t, ok)
	assert.False(t, entry.CreatedAt.IsZero())

	c.Clear()
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestCache_ClearPrefix(t *testing.T) {
	c := New[int]()
	c.Set("osrm|a", 1)
	c.Set("osrm|b", 2)
	c.Set("google|a", 3)

	removed := c.ClearPrefix("osrm|")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("google|a")
	assert.True(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := New[int]()
	c.Set("x", 1)
	c.Set("y", 2)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.ElementsMatch(t, []string{"x", "y"}, stats.Keys)
	assert.False(t, stats.NewestEntry.IsZero())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%10)
			c.Set(key, n)
			c.Get(key)
			c.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
}
