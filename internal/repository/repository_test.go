package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"lockwise/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSlots() []models.SlotAvailability {
	return []models.SlotAvailability{
		{Time: "09:00", Available: true},
		{Time: "10:00", Available: false},
		{Time: "11:00", Available: true},
	}
}

func newTestRedisCache(t *testing.T) (*RedisAvailabilityCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisAvailabilityCache(client, time.Minute, nil), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	got, err := cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, got, "miss should return nil without error")

	require.NoError(t, cache.SetSlots(ctx, 1, date, testSlots()))

	got, err = cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Equal(t, testSlots(), got)

	// other service and other date stay independent
	got, err = cache.GetSlots(ctx, 2, date)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = cache.GetSlots(ctx, 1, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheInvalidate(t *testing.T) {
	cache, _ := newTestRedisCache(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.SetSlots(ctx, 5, date, testSlots()))
	require.NoError(t, cache.Invalidate(ctx, 5, date))

	got, err := cache.GetSlots(ctx, 5, date)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheTTL(t *testing.T) {
	cache, mr := newTestRedisCache(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.SetSlots(ctx, 1, date, testSlots()))

	mr.FastForward(2 * time.Minute)

	got, err := cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, got, "entry should expire after the TTL")
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := NewMemoryAvailabilityCache(time.Minute)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	got, err := cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.SetSlots(ctx, 1, date, testSlots()))

	got, err = cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Equal(t, testSlots(), got)

	require.NoError(t, cache.Invalidate(ctx, 1, date))

	got, err = cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCacheReturnsCopy(t *testing.T) {
	cache := NewMemoryAvailabilityCache(time.Minute)
	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.SetSlots(ctx, 1, date, testSlots()))

	first, err := cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	first[0].Available = false

	second, err := cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.True(t, second[0].Available, "mutating a returned slice must not poison the cache")
}

type failingCache struct {
	err   error
	calls int
}

func (f *failingCache) GetSlots(context.Context, int64, time.Time) ([]models.SlotAvailability, error) {
	f.calls++
	return nil, f.err
}

func (f *failingCache) SetSlots(context.Context, int64, time.Time, []models.SlotAvailability) error {
	f.calls++
	return f.err
}

func (f *failingCache) Invalidate(context.Context, int64, time.Time) error {
	f.calls++
	return f.err
}

func TestFailoverSwitchesToFallback(t *testing.T) {
	primary := &failingCache{err: errors.New("connection refused")}
	fallback := NewMemoryAvailabilityCache(time.Minute)
	cache := NewFailoverAvailabilityCache(primary, fallback, nil)

	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.SetSlots(ctx, 1, date, testSlots()))

	got, err := cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Equal(t, testSlots(), got)

	// primary is down; further calls within the retry window skip it
	callsAfterFirstFailure := primary.calls
	_, err = cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirstFailure, primary.calls)
}

func TestFailoverPrefersHealthyPrimary(t *testing.T) {
	mrCache, _ := newTestRedisCache(t)
	fallback := NewMemoryAvailabilityCache(time.Minute)
	cache := NewFailoverAvailabilityCache(mrCache, fallback, nil)

	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, cache.SetSlots(ctx, 1, date, testSlots()))

	// written through the primary, fallback stays empty
	got, err := fallback.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = cache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Equal(t, testSlots(), got)
}

func TestFailoverInvalidateClearsBothSides(t *testing.T) {
	primaryCache, _ := newTestRedisCache(t)
	fallback := NewMemoryAvailabilityCache(time.Minute)
	cache := NewFailoverAvailabilityCache(primaryCache, fallback, nil)

	ctx := context.Background()
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, primaryCache.SetSlots(ctx, 1, date, testSlots()))
	require.NoError(t, fallback.SetSlots(ctx, 1, date, testSlots()))

	require.NoError(t, cache.Invalidate(ctx, 1, date))

	got, err := primaryCache.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = fallback.GetSlots(ctx, 1, date)
	require.NoError(t, err)
	assert.Nil(t, got)
}
