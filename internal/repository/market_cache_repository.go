package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"golang-stock-autotrader/pkg/common"
)

// MarketCacheRepository keeps short-lived trading state in Redis.
type MarketCacheRepository interface {
	SetLastPrice(ctx context.Context, stockCode string, price int64, at time.Time, ttl time.Duration) error
	GetLastPrice(ctx context.Context, stockCode string) (int64, time.Time, error)
	// AcquireLock takes or refreshes the lock for owner. It returns false when another owner holds it.
	AcquireLock(ctx context.Context, account, stockCode, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, account, stockCode, owner string) error
}

type marketCacheRepository struct {
	client *redis.Client
}

// NewMarketCacheRepository returns a Redis backed cache, or a no-op cache when client is nil.
func NewMarketCacheRepository(client *redis.Client) MarketCacheRepository {
	if client == nil {
		return noopMarketCache{}
	}
	return &marketCacheRepository{client: client}
}

func (r *marketCacheRepository) SetLastPrice(ctx context.Context, stockCode string, price int64, at time.Time, ttl time.Duration) error {
	key := fmt.Sprintf(common.RedisKeyLastPrice, stockCode)
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"price":     price,
		"timestamp": at.Unix(),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *marketCacheRepository) GetLastPrice(ctx context.Context, stockCode string) (int64, time.Time, error) {
	values, err := r.client.HGetAll(ctx, fmt.Sprintf(common.RedisKeyLastPrice, stockCode)).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(values) == 0 {
		return 0, time.Time{}, ErrNotFound
	}
	price, err := strconv.ParseInt(values["price"], 10, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid cached price: %w", err)
	}
	ts, _ := strconv.ParseInt(values["timestamp"], 10, 64)
	return price, time.Unix(ts, 0), nil
}

// refreshLock extends the TTL only when the lock still belongs to owner.
var refreshLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (r *marketCacheRepository) AcquireLock(ctx context.Context, account, stockCode, owner string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf(common.RedisKeyTraderLock, account, stockCode)
	ok, err := r.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	refreshed, err := refreshLock.Run(ctx, r.client, []string{key}, owner, ttl.Milliseconds()).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return refreshed == 1, nil
}

func (r *marketCacheRepository) ReleaseLock(ctx context.Context, account, stockCode, owner string) error {
	key := fmt.Sprintf(common.RedisKeyTraderLock, account, stockCode)
	err := releaseLock.Run(ctx, r.client, []string{key}, owner).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

type noopMarketCache struct{}

func (noopMarketCache) SetLastPrice(context.Context, string, int64, time.Time, time.Duration) error {
	return nil
}

func (noopMarketCache) GetLastPrice(context.Context, string) (int64, time.Time, error) {
	return 0, time.Time{}, ErrNotFound
}

func (noopMarketCache) AcquireLock(context.Context, string, string, string, time.Duration) (bool, error) {
	return true, nil
}

func (noopMarketCache) ReleaseLock(context.Context, string, string, string) error {
	return nil
}
