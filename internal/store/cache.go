package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"jobharvest/internal/logging"
)

const seenKeyPrefix = "jobharvest:seen:"

// SeenCache is a Redis fast path in front of the duplicate lookup. It only
// ever short-circuits known duplicates; a miss or a Redis failure falls
// through to Postgres, which stays authoritative.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewSeenCache connects to Redis using a URL. Entries expire after ttl so
// the cache tracks the active scraping window rather than the whole store.
func NewSeenCache(ctx context.Context, redisURL string, ttl time.Duration, logger logging.Logger) (*SeenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &SeenCache{client: client, ttl: ttl, logger: logger}, nil
}

// Seen reports whether the job id was recently marked. A nil cache or a
// Redis error reads as "not seen".
func (c *SeenCache) Seen(ctx context.Context, jobID string) bool {
	if c == nil {
		return false
	}
	n, err := c.client.Exists(ctx, seenKeyPrefix+jobID).Result()
	if err != nil {
		c.logger.Debug("Seen-cache lookup failed, falling through to store", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
		return false
	}
	return n > 0
}

// Mark records the job id as seen. Best effort.
func (c *SeenCache) Mark(ctx context.Context, jobID string) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, seenKeyPrefix+jobID, 1, c.ttl).Err(); err != nil {
		c.logger.Debug("Seen-cache mark failed", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
	}
}

// Close closes the underlying Redis connection.
func (c *SeenCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
