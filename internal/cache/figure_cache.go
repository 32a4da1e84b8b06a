package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"figurehub/internal/http-api/models"
)

// FigureCache caches figure lookups by tag UID. Tap URLs hit the same
// physical tag over and over, so the tap path reads through this cache.
// All methods are nil-receiver safe: a nil cache means redis is not
// configured and every call is a miss / no-op.
type FigureCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFigureCache(redisURL, password string, ttl time.Duration) (*FigureCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &FigureCache{client: rdb, ttl: ttl}, nil
}

func key(tagUID string) string {
	return fmt.Sprintf("figure:tag:%s", tagUID)
}

// Get returns the cached figure for a tag UID, or (nil, false) on a miss.
func (c *FigureCache) Get(ctx context.Context, tagUID string) (*models.Figure, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(tagUID)).Bytes()
	if err != nil {
		return nil, false
	}
	var figure models.Figure
	if err := json.Unmarshal(raw, &figure); err != nil {
		return nil, false
	}
	return &figure, true
}

func (c *FigureCache) Set(ctx context.Context, tagUID string, figure *models.Figure) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(figure)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(tagUID), raw, c.ttl)
}

// Invalidate drops the cached entry, e.g. after a claim changes ownership.
func (c *FigureCache) Invalidate(ctx context.Context, tagUID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key(tagUID))
}

func (c *FigureCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
