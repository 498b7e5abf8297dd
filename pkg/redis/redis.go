package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/LadaVilada/kido-sub000/config"
)

// ErrCacheMiss reports an absent cache key.
var ErrCacheMiss = errors.New("cache miss")

// Client wraps the Redis connection.
// Used for the token blacklist, auth rate limiting and calendar view
// caching; all callers must tolerate a nil Client.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient opens a Redis connection and pings it once.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token blacklist ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken stores a JWT ID with a TTL matching the token's
// remaining lifetime.
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to block
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted checks whether a JWT ID is blacklisted.
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── Rate limiting ──

// CheckRateLimit counts a hit in a fixed window and reports whether the
// caller is still under the limit. The first hit of a window sets the
// expiry.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// ── Calendar view cache ──

const calendarCachePrefix = "calendar:"

// GetCachedView returns a cached calendar view payload.
func (c *Client) GetCachedView(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, calendarCachePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

// SetCachedView stores a calendar view payload with a TTL.
func (c *Client) SetCachedView(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, calendarCachePrefix+key, data, ttl).Err()
}

// InvalidateUserViews drops every cached view of one user. Mutations on
// children, activities or settings call this.
func (c *Client) InvalidateUserViews(ctx context.Context, userID string) error {
	pattern := calendarCachePrefix + "*:" + userID + ":*"
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
