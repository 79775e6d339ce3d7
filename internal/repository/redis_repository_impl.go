package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

const productCacheKeyPrefix = "snowboardproduct:"

// Entries are hashes holding the BSON document under "doc" and its rating
// version under "version". Both scripts run atomically on the server.
var (
	fillProductScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], "doc", ARGV[1], "version", ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[3])
end
return 1
`)

	setProductScript = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "version")
if current and tonumber(current) > tonumber(ARGV[2]) then
	return 0
end
redis.call("HSET", KEYS[1], "doc", ARGV[1], "version", ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[3])
end
return 1
`)
)

// RedisProductCacheImpl stores products as BSON so the internal rating
// accumulator survives a round trip through the cache.
type RedisProductCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func CreateNewRedisProductCache(client *redis.Client, ttl time.Duration) ProductCache {
	return &RedisProductCacheImpl{client: client, ttl: ttl}
}

func (r *RedisProductCacheImpl) GetProduct(ctx context.Context, id string) (product domain.Product, found bool, err error) {
	data, err := r.client.HGet(ctx, productCacheKeyPrefix+id, "doc").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return product, false, nil
		}
		return product, false, fmt.Errorf("redis get product: %w", err)
	}

	if err = bson.Unmarshal(data, &product); err != nil {
		return product, false, fmt.Errorf("unmarshal product: %w", err)
	}

	return product, true, nil
}

// FillProduct never replaces an entry, so a snapshot read before a review
// cannot overwrite the product that review stored.
func (r *RedisProductCacheImpl) FillProduct(ctx context.Context, product domain.Product) (err error) {
	if err = r.run(ctx, fillProductScript, product); err != nil {
		return fmt.Errorf("redis fill product: %w", err)
	}

	return nil
}

func (r *RedisProductCacheImpl) SetProduct(ctx context.Context, product domain.Product) (err error) {
	if err = r.run(ctx, setProductScript, product); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}

	return nil
}

func (r *RedisProductCacheImpl) run(ctx context.Context, script *redis.Script, product domain.Product) error {
	data, err := bson.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	keys := []string{productCacheKeyPrefix + product.ID.Hex()}

	return script.Run(ctx, r.client, keys, data, product.RatingVersion, r.ttl.Milliseconds()).Err()
}
