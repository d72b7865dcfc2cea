package legcache

import (
	"context"
	"sync"

	"github.com/routeweaver/routeweaver/internal/directions"
)

type memoryKey struct {
	profile directions.Profile
	from    directions.Coordinate
	to      directions.Coordinate
}

// MemoryCache is an in-memory implementation of the builder's leg cache.
// This is intended for testing and single-process deployments without
// Redis. Entries never expire.
type MemoryCache struct {
	mu   sync.RWMutex
	legs map[memoryKey]directions.Leg
}

// NewMemoryCache creates a new in-memory leg cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		legs: make(map[memoryKey]directions.Leg),
	}
}

// Get retrieves a cached leg.
func (c *MemoryCache) Get(_ context.Context, profile directions.Profile, from, to directions.Coordinate) (*directions.Leg, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	leg, ok := c.legs[memoryKey{profile: profile, from: from, to: to}]
	if !ok {
		return nil, false
	}

	cpy := leg
	return &cpy, true
}

// Put stores a leg result.
func (c *MemoryCache) Put(_ context.Context, profile directions.Profile, from, to directions.Coordinate, leg *directions.Leg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.legs[memoryKey{profile: profile, from: from, to: to}] = *leg
}

// Len reports the number of cached legs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.legs)
}
