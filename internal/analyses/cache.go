package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-matcher/internal/matching"
	"resume-matcher/internal/shared/util"
)

const queryCachePrefix = "matcher:query:"

// QueryCache stores rankings keyed by query and the analyses they ranked.
type QueryCache interface {
	Get(ctx context.Context, key string) (matching.Ranking, bool, error)
	Set(ctx context.Context, key string, ranking matching.Ranking, ttl time.Duration) error
}

// QueryCacheKey identifies a ranking. Analyses are immutable, so the key stays
// valid for as long as the same analysis ids are ranked in the same order.
func QueryCacheKey(query string, analysisIDs []string) string {
	parts := make([]string, 0, len(analysisIDs)+1)
	parts = append(parts, query)
	parts = append(parts, analysisIDs...)
	return queryCachePrefix + util.HashKey(parts...)
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (matching.Ranking, bool, error) {
	return matching.Ranking{}, false, nil
}

func (NopCache) Set(context.Context, string, matching.Ranking, time.Duration) error {
	return nil
}

// RedisCache keeps rankings as JSON values in Redis.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (matching.Ranking, bool, error) {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return matching.Ranking{}, false, nil
	}
	if err != nil {
		return matching.Ranking{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var ranking matching.Ranking
	if err := json.Unmarshal(raw, &ranking); err != nil {
		return matching.Ranking{}, false, fmt.Errorf("decode cached ranking: %w", err)
	}
	return ranking, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, ranking matching.Ranking, ttl time.Duration) error {
	raw, err := json.Marshal(ranking)
	if err != nil {
		return fmt.Errorf("encode ranking: %w", err)
	}
	if err := c.Client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
