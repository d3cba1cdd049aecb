package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuanvumaihuynh/ecom/internal/config"
	"github.com/tuanvumaihuynh/ecom/internal/model"
)

const productKeyPrefix = "product:"

// NewRedisClient creates a redis client and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

var _ ProductCache = (*RedisProductCache)(nil)

type RedisProductCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisProductCache(rdb redis.Cmdable, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{
		rdb: rdb,
		ttl: ttl,
	}
}

func (c *RedisProductCache) GetProduct(ctx context.Context, id int64) (model.Product, bool, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Product{}, false, nil
		}
		return model.Product{}, false, fmt.Errorf("redis get: %w", err)
	}

	var product model.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return model.Product{}, false, fmt.Errorf("unmarshal product: %w", err)
	}

	return product, true, nil
}

func (c *RedisProductCache) Generation(ctx context.Context, id int64) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation: %w", err)
	}
	return gen, nil
}

// setIfGeneration writes KEYS[1] only while KEYS[2] still holds ARGV[1]; a
// missing generation counts as 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

func (c *RedisProductCache) SetProduct(ctx context.Context, product model.Product, generation int64) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	keys := []string{productKey(product.ID), generationKey(product.ID)}
	if err := setIfGeneration.Run(ctx, c.rdb, keys, generation, data, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (c *RedisProductCache) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Del(ctx, productKey(id))
		return nil
	}); err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}

	return nil
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

// generationKey has no TTL: it must outlive every entry written under it.
func generationKey(id int64) string {
	return productKey(id) + ":gen"
}
