package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheService provides JSON caching for public profile lookups. Analytics
// responses are never cached here; stats are always recomputed from source
// rows on read.
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
	}
}

// CacheKeyType represents different types of cache keys
type CacheKeyType string

const (
	// CacheKeyProfile is for profile lookups by numeric id
	CacheKeyProfile CacheKeyType = "profile"
	// CacheKeyNFCTag is for profile lookups by NFC tag id
	CacheKeyNFCTag CacheKeyType = "nfc"
)

// GenerateCacheKey generates a cache key for a given type and parameters.
// Format: <type>:<param1>:<param2>:...
// Params are kept verbatim. NFC tag ids are case-sensitive in the store, so
// tags differing only in case must map to distinct keys.
func (c *CacheService) GenerateCacheKey(keyType CacheKeyType, params ...string) string {
	parts := append([]string{string(keyType)}, params...)
	return strings.Join(parts, ":")
}

// GenerateProfileKey generates a cache key for a profile id.
// Format: profile:<id>
func (c *CacheService) GenerateProfileKey(profileID int32) string {
	return c.GenerateCacheKey(CacheKeyProfile, fmt.Sprintf("%d", profileID))
}

// GenerateNFCTagKey generates a cache key for an NFC tag lookup.
// Format: nfc:<tag-id>
func (c *CacheService) GenerateNFCTagKey(tagID string) string {
	return c.GenerateCacheKey(CacheKeyNFCTag, tagID)
}

// Set stores a value in cache with the configured TTL
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redis.Set(ctx, key, data, c.ttl)
}

// Get retrieves a value from cache and deserializes it. The boolean result
// reports a cache hit; a miss is not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// Invalidate removes one or more keys from cache
func (c *CacheService) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...)
}
