package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contactdesk/internal/domain/admin"

	"github.com/redis/go-redis/v9"
)

var _ admin.SessionStore = (*RedisStore)(nil)

// RedisStore keeps sessions in Redis with a TTL matching their expiry,
// so expired sessions disappear without a sweeper.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed session store.
func NewRedisStore(redisAddr, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreWithClient(client)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "contactdesk:session:"}
}

// Create stores a session until its expiry.
func (r *RedisStore) Create(ctx context.Context, s *admin.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := r.client.Set(ctx, r.prefix+s.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Get returns the session, or nil if it does not exist or has expired.
func (r *RedisStore) Get(ctx context.Context, id string) (*admin.Session, error) {
	data, err := r.client.Get(ctx, r.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}

	var s admin.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	return &s, nil
}

// Delete removes a session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
