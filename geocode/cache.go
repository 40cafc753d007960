package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "medalert:geocode:"

// CachedCascade memoizes cascade results in Redis keyed by normalized
// query. Cache failures degrade to a plain cascade lookup; negative
// results are not cached so a transient provider outage does not pin a
// miss.
type CachedCascade struct {
	cascade *Cascade
	client  *redis.Client
	ttl     time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// NewCachedCascade wraps a cascade with a Redis result cache.
func NewCachedCascade(cascade *Cascade, client *redis.Client, ttl time.Duration) *CachedCascade {
	return &CachedCascade{cascade: cascade, client: client, ttl: ttl}
}

// Search resolves the query, consulting the cache first.
func (c *CachedCascade) Search(ctx context.Context, query string) *Result {
	key := cacheKeyPrefix + normalizeQuery(query)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached Result
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached
		}
	} else if err != redis.Nil {
		log.Printf("geocode: cache read failed for %q: %v", query, err)
	}

	result := c.cascade.Search(ctx, query)
	if result == nil {
		return nil
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Printf("geocode: cache write failed for %q: %v", query, err)
		}
	}
	return result
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
