package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/videotube-backend/internal/models"
)

const (
	// UserCacheKeyPrefix is the Redis key prefix for cached user profiles
	UserCacheKeyPrefix = "cache:user:"
	// DefaultUserCacheTTL bounds how long a profile can outlive a missed invalidation
	DefaultUserCacheTTL = 10 * time.Minute
)

// UserCache keeps sanitized user profiles in Redis. A nil *UserCache, or one built
// without a client, is a valid no-op cache.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

func (c *UserCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached profile for id. Misses and Redis errors both report false.
func (c *UserCache) Get(ctx context.Context, id string) (*models.User, bool) {
	if !c.enabled() || id == "" {
		return nil, false
	}

	val, err := c.client.Get(ctx, UserCacheKeyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("WARNING: user cache read failed for %s: %v", id, err)
		}
		return nil, false
	}

	var u models.User
	if err := json.Unmarshal(val, &u); err != nil {
		log.Printf("WARNING: dropping corrupt user cache entry %s: %v", id, err)
		c.Delete(ctx, id)
		return nil, false
	}
	return &u, true
}

// Set stores u without its secret fields.
func (c *UserCache) Set(ctx context.Context, u *models.User) {
	if !c.enabled() || u == nil || u.ID == "" {
		return
	}

	data, err := json.Marshal(u.Sanitized())
	if err != nil {
		log.Printf("WARNING: failed to encode user %s for cache: %v", u.ID, err)
		return
	}
	if err := c.client.Set(ctx, UserCacheKeyPrefix+u.ID, data, c.ttl).Err(); err != nil {
		log.Printf("WARNING: user cache write failed for %s: %v", u.ID, err)
	}
}

func (c *UserCache) Delete(ctx context.Context, id string) {
	if !c.enabled() || id == "" {
		return
	}
	if err := c.client.Del(ctx, UserCacheKeyPrefix+id).Err(); err != nil {
		log.Printf("WARNING: user cache invalidation failed for %s: %v", id, err)
	}
}
