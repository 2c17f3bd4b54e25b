package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// AnswerCache caches finished answers per normalized query. When Redis is
// configured the cache is shared across instances; otherwise it falls back
// to an in-process cache. A cache hit skips the whole pipeline.
type AnswerCache struct {
	redis *redis.Client // nil when Redis is not configured
	local *gocache.Cache
	ttl   time.Duration
}

// NewAnswerCache creates an answer cache. redisURL may be empty.
func NewAnswerCache(redisURL string, ttl time.Duration) *AnswerCache {
	cache := &AnswerCache{
		local: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("invalid Redis URL, falling back to in-process answer cache", "error", err)
			return cache
		}
		opts.DialTimeout = 5 * time.Second
		opts.ReadTimeout = 3 * time.Second
		opts.WriteTimeout = 3 * time.Second

		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("Redis unreachable, falling back to in-process answer cache", "error", err)
			return cache
		}
		cache.redis = client
	}

	return cache
}

// Get returns a cached answer for the query, if any
func (c *AnswerCache) Get(ctx context.Context, query string) (string, bool) {
	key := cacheKey(query)

	if c.redis != nil {
		answer, err := c.redis.Get(ctx, key).Result()
		if err == nil {
			return answer, true
		}
		if err != redis.Nil {
			slog.Warn("answer cache read failed", "error", err)
		}
		return "", false
	}

	if cached, found := c.local.Get(key); found {
		return cached.(string), true
	}
	return "", false
}

// Set stores an answer for the query
func (c *AnswerCache) Set(ctx context.Context, query, answer string) {
	key := cacheKey(query)

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, answer, c.ttl).Err(); err != nil {
			slog.Warn("answer cache write failed", "error", err)
		}
		return
	}

	c.local.Set(key, answer, gocache.DefaultExpiration)
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "ai-search:" + hex.EncodeToString(sum[:])
}
