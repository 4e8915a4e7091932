package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"contactdesk/internal/domain/inquiry"

	"github.com/redis/go-redis/v9"
)

var _ inquiry.RecipientRateLimiter = (*RedisRecipientLimiter)(nil)

// RedisRecipientLimiter caps how many inquiries one address may submit per hour,
// using a sliding window over a Redis sorted set scored by timestamp.
type RedisRecipientLimiter struct {
	client     *redis.Client
	prefix     string
	maxPerHour int
	window     time.Duration
	now        func() time.Time
}

// NewRedisRecipientLimiter creates a new Redis-based per-address rate limiter.
func NewRedisRecipientLimiter(redisAddr, password string, db int, maxPerHour int) *RedisRecipientLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
	return NewRedisRecipientLimiterWithClient(client, maxPerHour)
}

// NewRedisRecipientLimiterWithClient wraps an existing client.
func NewRedisRecipientLimiterWithClient(client *redis.Client, maxPerHour int) *RedisRecipientLimiter {
	return &RedisRecipientLimiter{
		client:     client,
		prefix:     "contactdesk:ratelimit:",
		maxPerHour: maxPerHour,
		window:     time.Hour,
		now:        time.Now,
	}
}

// Allow reports whether another inquiry from address is accepted, and records it if so.
// A non-positive limit disables the check.
func (r *RedisRecipientLimiter) Allow(ctx context.Context, address string) (bool, error) {
	if r.maxPerHour <= 0 {
		return true, nil
	}

	key := r.prefix + address
	now := r.now()
	windowStart := now.Add(-r.window)

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("checking recipient rate limit: %w", err)
	}

	if countCmd.Val() >= int64(r.maxPerHour) {
		return false, nil
	}

	// Random suffix keeps concurrent submissions in the same nanosecond distinct.
	randBytes := make([]byte, 4)
	_, _ = rand.Read(randBytes)
	member := redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d:%s", now.UnixNano(), hex.EncodeToString(randBytes)),
	}

	pipe = r.client.Pipeline()
	pipe.ZAdd(ctx, key, member)
	pipe.Expire(ctx, key, r.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("recording rate limit entry: %w", err)
	}

	return true, nil
}

// Close closes the Redis connection.
func (r *RedisRecipientLimiter) Close() error {
	return r.client.Close()
}
