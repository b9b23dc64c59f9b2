package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/cache"
	platformconfig "github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/platform/config"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemoryCache(0, 0)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.Equal(t, cache.ErrKeyNotFound, err)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestMemoryCache_ExpiresWithClock(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := cache.NewMemoryCacheWithClock(0, 0, clock)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 30*time.Second))
	clock.Advance(29 * time.Second)
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "k")
	assert.Equal(t, cache.ErrKeyNotFound, err)
}

func TestMemoryCache_EvictsWhenOverBudget(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := cache.NewMemoryCacheWithClock(200, 0, clock)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "old", make([]byte, 80), time.Minute))
	require.NoError(t, c.Set(ctx, "new", make([]byte, 80), time.Hour))

	_, err := c.Get(ctx, "old")
	assert.Equal(t, cache.ErrKeyNotFound, err)
	_, err = c.Get(ctx, "new")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestMemoryCache_ClosedRejectsWrites(t *testing.T) {
	c := cache.NewMemoryCache(0, time.Minute)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err := c.Set(context.Background(), "k", []byte("v"), time.Minute)
	assert.Equal(t, cache.ErrCacheDisabled, err)
}

func TestGenericCacheService_RoundTripsJSON(t *testing.T) {
	ctx := context.Background()
	svc := cache.NewGenericCacheService(cache.NewMemoryCache(0, 0), cache.ServiceOptions{
		Enabled: true, TTL: time.Minute, Prefix: "docsearch",
	})
	defer svc.Close()

	type countResult struct{ Total int64 }
	require.NoError(t, svc.CacheData(ctx, "count:1", countResult{Total: 42}))

	var got countResult
	require.NoError(t, svc.GetCached(ctx, "count:1", &got))
	assert.Equal(t, int64(42), got.Total)

	err := svc.GetCached(ctx, "count:2", &got)
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)

	stats := svc.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestGenericCacheService_Disabled(t *testing.T) {
	svc, err := cache.NewFromConfig(context.Background(), platformconfig.CacheConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())

	var v int
	assert.ErrorIs(t, svc.GetCached(context.Background(), "k", &v), cache.ErrCacheDisabled)
	assert.ErrorIs(t, svc.CacheData(context.Background(), "k", 1), cache.ErrCacheDisabled)
}

func TestGenerateHashKey_Deterministic(t *testing.T) {
	svc := cache.NewGenericCacheService(nil, cache.ServiceOptions{})

	a := svc.GenerateHashKey("count", map[string]interface{}{"user": "7", "predicate": "TRUE"})
	b := svc.GenerateHashKey("count", map[string]interface{}{"predicate": "TRUE", "user": "7"})
	c := svc.GenerateHashKey("count", map[string]interface{}{"user": "9", "predicate": "TRUE"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^count:[0-9a-f]{16}$`, a)
}

func TestNewFromConfig_RejectsUnknownBackend(t *testing.T) {
	_, err := cache.NewFromConfig(context.Background(), platformconfig.CacheConfig{Enabled: true, Backend: "memcached"})
	assert.ErrorIs(t, err, cache.ErrInvalidCacheType)
}

func TestRedisCache_AgainstMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rc := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer rc.Close()

	require.NoError(t, rc.Set(ctx, "docsearch:count:a", []byte("3"), time.Minute))
	require.NoError(t, rc.Set(ctx, "docsearch:count:b", []byte("4"), time.Minute))

	value, err := rc.Get(ctx, "docsearch:count:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), value)

	require.NoError(t, rc.Delete(ctx, "docsearch:count:b"))
	_, err = rc.Get(ctx, "docsearch:count:b")
	assert.Equal(t, cache.ErrKeyNotFound, err)
}
