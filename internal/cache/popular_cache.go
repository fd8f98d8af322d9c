// Package cache keeps popular film rankings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/internal/repositories"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "popular:"
	// indexKey is a set of every ranking key written since the last
	// invalidation.
	indexKey = keyPrefix + "keys"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// PopularCache stores one JSON ranking per query key. Entries expire after
// TTL even if no invalidation arrives.
type PopularCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPopularCache connects and pings Redis.
func NewPopularCache(ctx context.Context, cfg Config) (*PopularCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewPopularCacheWithClient(client, cfg.TTL), nil
}

func NewPopularCacheWithClient(client *redis.Client, ttl time.Duration) *PopularCache {
	return &PopularCache{client: client, ttl: ttl}
}

func (c *PopularCache) Get(ctx context.Context, query repositories.PopularQuery) ([]models.Film, bool, error) {
	data, err := c.client.Get(ctx, rankingKey(query)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var films []models.Film
	if err := json.Unmarshal(data, &films); err != nil {
		return nil, false, fmt.Errorf("corrupt cached ranking: %w", err)
	}
	return films, true, nil
}

func (c *PopularCache) Set(ctx context.Context, query repositories.PopularQuery, films []models.Film) error {
	if c.ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(films)
	if err != nil {
		return err
	}

	key := rankingKey(query)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		pipe.SAdd(ctx, indexKey, key)
		pipe.Expire(ctx, indexKey, c.ttl)
		return nil
	})
	return err
}

// invalidateScript deletes every indexed ranking and the index in one
// step, so a Set running concurrently is either dropped with the rest or
// indexed afresh.
var invalidateScript = redis.NewScript(`
local keys = redis.call('SMEMBERS', KEYS[1])
for i = 1, #keys, 500 do
	redis.call('DEL', unpack(keys, i, math.min(i + 499, #keys)))
end
redis.call('DEL', KEYS[1])
return #keys
`)

// Invalidate drops every cached ranking.
func (c *PopularCache) Invalidate(ctx context.Context) error {
	return invalidateScript.Run(ctx, c.client, []string{indexKey}).Err()
}

func (c *PopularCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *PopularCache) Close() error {
	return c.client.Close()
}

func rankingKey(query repositories.PopularQuery) string {
	return keyPrefix + query.Key()
}
