package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartbasket/internal/domain"

	"github.com/redis/go-redis/v9"
)

const lookupCacheKeyPrefix = "lookup:"

// lookupCache keeps resolved price lookups in redis so repeated queries
// for the same item skip the search provider and the model call.
type lookupCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newLookupCache(client *redis.Client, ttl time.Duration) *lookupCache {
	return &lookupCache{client: client, ttl: ttl}
}

func lookupCacheKey(query, city string) string {
	return fmt.Sprintf("%s%s:%s", lookupCacheKeyPrefix, domain.NormalizeName(query), domain.NormalizeName(city))
}

// Get returns the cached result for a query, or nil on a miss.
func (c *lookupCache) Get(ctx context.Context, query, city string) (*PriceResult, error) {
	raw, err := c.client.Get(ctx, lookupCacheKey(query, city)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, fmt.Errorf("failed to read lookup cache: %w", err)
	}

	var result PriceResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached lookup: %w", err)
	}

	return &result, nil
}

// Set stores a lookup result with the configured TTL.
func (c *lookupCache) Set(ctx context.Context, query, city string, result *PriceResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode lookup result: %w", err)
	}

	if err := c.client.Set(ctx, lookupCacheKey(query, city), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache lookup result: %w", err)
	}

	return nil
}
