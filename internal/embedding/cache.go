package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachingProvider decorates a Provider with a Redis cache keyed by the
// sha256 of the text. Embedding the same question twice is common (FAQ saves
// and repeated user queries), so a hit skips the embedding service entirely.
// Cache failures fall through to the inner provider.
type CachingProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewCachingProvider wraps inner with a Redis cache.
func NewCachingProvider(inner Provider, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachingProvider {
	return &CachingProvider{inner: inner, client: client, ttl: ttl, log: log}
}

func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:text:%x", hash)
}

func (c *CachingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		var vector []float32
		if err := json.Unmarshal([]byte(cached), &vector); err == nil {
			return vector, nil
		}
		// Corrupt entry: drop it and recompute.
		c.client.Del(ctx, key)
	}

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vector); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Warn("failed to cache embedding", zap.Error(err))
		}
	}

	return vector, nil
}
