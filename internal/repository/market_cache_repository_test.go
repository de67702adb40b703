package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-autotrader/internal/repository"
)

func newMarketCache(t *testing.T) (repository.MarketCacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewMarketCacheRepository(client), mr
}

func TestMarketCacheLastPrice(t *testing.T) {
	ctx := context.Background()
	cache, mr := newMarketCache(t)

	_, _, err := cache.GetLastPrice(ctx, code)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	at := time.Date(2024, 3, 4, 10, 15, 30, 500, time.UTC)
	require.NoError(t, cache.SetLastPrice(ctx, code, 10450, at, 2*time.Minute))

	assert.Equal(t, "10450", mr.HGet("last_price:"+code, "price"))
	assert.Equal(t, 2*time.Minute, mr.TTL("last_price:"+code))

	price, stamp, err := cache.GetLastPrice(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(10450), price)
	assert.True(t, at.Truncate(time.Second).Equal(stamp))

	mr.FastForward(3 * time.Minute)
	_, _, err = cache.GetLastPrice(ctx, code)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarketCacheTraderLock(t *testing.T) {
	ctx := context.Background()
	cache, mr := newMarketCache(t)
	key := "trader_lock:1234567801:" + code

	ok, err := cache.AcquireLock(ctx, "1234567801", code, "trader-a", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.AcquireLock(ctx, "1234567801", code, "trader-b", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "a second owner must not take a held lock")

	mr.FastForward(8 * time.Second)
	ok, err = cache.AcquireLock(ctx, "1234567801", code, "trader-a", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "the owner refreshes its own lock")
	assert.Equal(t, 10*time.Second, mr.TTL(key))

	require.NoError(t, cache.ReleaseLock(ctx, "1234567801", code, "trader-b"))
	owner, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "trader-a", owner, "only the owner can release")

	require.NoError(t, cache.ReleaseLock(ctx, "1234567801", code, "trader-a"))
	assert.False(t, mr.Exists(key))

	ok, err = cache.AcquireLock(ctx, "1234567801", code, "trader-b", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMarketCacheLockExpires(t *testing.T) {
	ctx := context.Background()
	cache, mr := newMarketCache(t)

	ok, err := cache.AcquireLock(ctx, "1234567801", code, "trader-a", 10*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(11 * time.Second)
	ok, err = cache.AcquireLock(ctx, "1234567801", code, "trader-b", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "an expired lock is free")
}

func TestMarketCacheLockErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	cache, mr := newMarketCache(t)
	mr.Close()

	_, err := cache.AcquireLock(ctx, "1234567801", code, "trader-a", time.Second)
	assert.Error(t, err)
}

func TestNoopMarketCache(t *testing.T) {
	ctx := context.Background()
	cache := repository.NewMarketCacheRepository(nil)

	ok, err := cache.AcquireLock(ctx, "1234567801", code, "trader-a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	_, _, err = cache.GetLastPrice(ctx, code)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
