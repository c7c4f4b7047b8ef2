package consultation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryKeyPrefix = "consult:summary:"

// RedisSummaryCache keeps generated summaries in Redis so repeated reads of
// an unchanged session do not call the generation backend again.
type RedisSummaryCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSummaryCache(client redis.Cmdable, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func (c *RedisSummaryCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, summaryKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("consultation: summary cache get: %w", err)
	}
	return val, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, key, summary string) error {
	if err := c.client.Set(ctx, summaryKeyPrefix+key, summary, c.ttl).Err(); err != nil {
		return fmt.Errorf("consultation: summary cache set: %w", err)
	}
	return nil
}
