package worldgen

import "sync"

// Layer tags one cached noise layer.
type Layer uint8

const (
	LayerContinents Layer = iota
	LayerDetail
	LayerVegetation

	numLayers
)

// Cache memoises noise samples per layer and integer column. All layers
// share one countdown: any access resets it, Tick decrements it, and when it
// reaches zero every layer is dropped. This approximates LRU for a viewer
// moving over the world without keeping columns forever.
type Cache struct {
	mu        sync.Mutex
	ttl       int
	countdown int
	layers    [numLayers]map[[2]int]float64
}

// NewCache creates a cache whose entries survive ttl idle ticks.
func NewCache(ttl int) *Cache {
	c := &Cache{ttl: max(ttl, 1)}
	for i := range c.layers {
		c.layers[i] = make(map[[2]int]float64)
	}
	return c
}

// Get returns the cached value for (layer, x, z), computing and storing it on
// a miss. compute runs without the lock held.
func (c *Cache) Get(layer Layer, x, z int, compute func() float64) float64 {
	key := [2]int{x, z}
	c.mu.Lock()
	c.countdown = c.ttl
	v, ok := c.layers[layer][key]
	c.mu.Unlock()
	if ok {
		return v
	}

	v = compute()
	c.mu.Lock()
	c.layers[layer][key] = v
	c.mu.Unlock()
	return v
}

// Tick advances the countdown and clears every layer when it expires.
// Returns true when the cache was cleared on this tick.
func (c *Cache) Tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.countdown <= 0 {
		return false
	}
	c.countdown--
	if c.countdown > 0 {
		return false
	}
	for i := range c.layers {
		clear(c.layers[i])
	}
	return true
}

// Len returns the number of cached samples across all layers.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.layers {
		n += len(l)
	}
	return n
}
