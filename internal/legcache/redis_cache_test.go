package legcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routeweaver/routeweaver/internal/directions"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisCache(RedisCacheConfig{
		Client: client,
		TTL:    ttl,
		Logger: zerolog.Nop(),
	})
	return cache, srv
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, 0)
	ctx := context.Background()

	from := directions.Coordinate{Lat: 52.37, Lon: 4.89}
	to := directions.Coordinate{Lat: 52.09, Lon: 5.12}
	leg := &directions.Leg{
		DurationSeconds: 1820.5,
		DistanceMeters:  41230,
		Geometry:        "_p~iF~ps|U_ulLnnqC",
	}

	cache.Put(ctx, directions.ProfileDriving, from, to, leg)

	got, ok := cache.Get(ctx, directions.ProfileDriving, from, to)
	require.True(t, ok)
	assert.Equal(t, leg.DurationSeconds, got.DurationSeconds)
	assert.Equal(t, leg.DistanceMeters, got.DistanceMeters)
	assert.Equal(t, leg.Geometry, got.Geometry)
}

func TestRedisCache_MissOnUnknownLeg(t *testing.T) {
	cache, _ := newTestCache(t, 0)

	_, ok := cache.Get(context.Background(), directions.ProfileDriving,
		directions.Coordinate{Lat: 1, Lon: 2}, directions.Coordinate{Lat: 3, Lon: 4})
	assert.False(t, ok)
}

func TestRedisCache_KeyedByProfileAndDirection(t *testing.T) {
	cache, _ := newTestCache(t, 0)
	ctx := context.Background()

	from := directions.Coordinate{Lat: 1, Lon: 2}
	to := directions.Coordinate{Lat: 3, Lon: 4}
	cache.Put(ctx, directions.ProfileDriving, from, to, &directions.Leg{DurationSeconds: 100})

	_, ok := cache.Get(ctx, directions.ProfileBike, from, to)
	assert.False(t, ok, "different profile must not hit")

	_, ok = cache.Get(ctx, directions.ProfileDriving, to, from)
	assert.False(t, ok, "reversed direction must not hit")
}

func TestRedisCache_EntriesExpire(t *testing.T) {
	cache, srv := newTestCache(t, time.Minute)
	ctx := context.Background()

	from := directions.Coordinate{Lat: 1, Lon: 2}
	to := directions.Coordinate{Lat: 3, Lon: 4}
	cache.Put(ctx, directions.ProfileDriving, from, to, &directions.Leg{DurationSeconds: 100})

	srv.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, directions.ProfileDriving, from, to)
	assert.False(t, ok)
}

func TestRedisCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, srv := newTestCache(t, 0)

	from := directions.Coordinate{Lat: 1, Lon: 2}
	to := directions.Coordinate{Lat: 3, Lon: 4}
	require.NoError(t, srv.Set(legKey(directions.ProfileDriving, from, to), "{not json"))

	_, ok := cache.Get(context.Background(), directions.ProfileDriving, from, to)
	assert.False(t, ok)
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	from := directions.Coordinate{Lat: 1, Lon: 2}
	to := directions.Coordinate{Lat: 3, Lon: 4}
	cache.Put(ctx, directions.ProfileDriving, from, to, &directions.Leg{DurationSeconds: 55, Geometry: "abc"})

	got, ok := cache.Get(ctx, directions.ProfileDriving, from, to)
	require.True(t, ok)
	assert.Equal(t, float64(55), got.DurationSeconds)
	assert.Equal(t, 1, cache.Len())

	_, ok = cache.Get(ctx, directions.ProfileDriving, to, from)
	assert.False(t, ok)
}
