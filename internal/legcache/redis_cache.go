// Package legcache provides leg result caches for the matrix builder.
//
// A cached leg lets repeated matrix builds over overlapping coordinate sets
// skip the upstream directions call entirely. Cache misses and transport
// errors are treated identically: the builder falls through to the gateway.
package legcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/routeweaver/routeweaver/internal/directions"
)

// DefaultTTL is how long cached legs remain valid. Road networks change
// slowly; an hour keeps results fresh without hammering the provider.
const DefaultTTL = 1 * time.Hour

// keyPrefix namespaces cache entries so the same Redis instance can be
// shared with other services.
const keyPrefix = "routeweaver:leg:"

// RedisCacheConfig holds configuration for the Redis leg cache.
type RedisCacheConfig struct {
	// Client is the Redis client to use (required).
	Client *redis.Client

	// TTL for cached legs. Defaults to DefaultTTL.
	TTL time.Duration

	// Logger for cache operations.
	Logger zerolog.Logger
}

// RedisCache is a Redis-backed implementation of the builder's leg cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisCache creates a new Redis-backed leg cache.
func NewRedisCache(cfg RedisCacheConfig) *RedisCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisCache{
		client: cfg.Client,
		ttl:    ttl,
		logger: cfg.Logger.With().Str("component", "legcache").Logger(),
	}
}

// Get retrieves a cached leg. A Redis error is logged and reported as a
// miss so the build continues against the gateway.
func (c *RedisCache) Get(ctx context.Context, profile directions.Profile, from, to directions.Coordinate) (*directions.Leg, bool) {
	data, err := c.client.Get(ctx, legKey(profile, from, to)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("leg cache read failed")
		}
		return nil, false
	}

	var leg directions.Leg
	if err := json.Unmarshal(data, &leg); err != nil {
		c.logger.Warn().Err(err).Msg("leg cache entry corrupt, ignoring")
		return nil, false
	}

	return &leg, true
}

// Put stores a leg result. Write failures are logged and swallowed; the
// cache is an optimization, never a dependency.
func (c *RedisCache) Put(ctx context.Context, profile directions.Profile, from, to directions.Coordinate, leg *directions.Leg) {
	data, err := json.Marshal(leg)
	if err != nil {
		c.logger.Warn().Err(err).Msg("leg cache marshal failed")
		return
	}

	if err := c.client.Set(ctx, legKey(profile, from, to), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("leg cache write failed")
	}
}

// legKey derives a deterministic cache key from the profile and the exact
// coordinate values of both endpoints. %v prints the shortest exact float
// representation, so distinct coordinates never share a key.
func legKey(profile directions.Profile, from, to directions.Coordinate) string {
	return fmt.Sprintf("%s%s:%v,%v:%v,%v", keyPrefix, profile, from.Lat, from.Lon, to.Lat, to.Lon)
}
