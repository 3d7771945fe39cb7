package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces pending keys in a shared Redis.
const DefaultKeyPrefix = "sholatbot:pending"

// RedisStore keeps pending choices as JSON values that expire natively.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	opts   Options
}

// NewRedisStore wraps client. The store takes ownership and closes it on Close.
func NewRedisStore(client redis.UniversalClient, prefix string, opts Options) *RedisStore {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, opts: opts}
}

func (r *RedisStore) key(conv ConversationID, intent Intent) string {
	return fmt.Sprintf("%s:%d:%d:%s", r.prefix, conv.ChatID, conv.UserID, intent)
}

func (r *RedisStore) Set(ctx context.Context, conv ConversationID, p Pending) error {
	if !p.Intent.Valid() {
		return fmt.Errorf("pending: invalid intent %q", p.Intent)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.opts.now()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("pending: marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key(conv, p.Intent), data, r.opts.TTL).Err(); err != nil {
		return fmt.Errorf("pending: redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, conv ConversationID, intent Intent) (Pending, bool, error) {
	data, err := r.client.Get(ctx, r.key(conv, intent)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, fmt.Errorf("pending: redis get: %w", err)
	}
	var p Pending
	if err := json.Unmarshal(data, &p); err != nil {
		return Pending{}, false, fmt.Errorf("pending: unmarshal: %w", err)
	}
	if r.opts.expired(p.CreatedAt) {
		return Pending{}, false, nil
	}
	return p, true, nil
}

func (r *RedisStore) Clear(ctx context.Context, conv ConversationID, intent Intent) error {
	if err := r.client.Del(ctx, r.key(conv, intent)).Err(); err != nil {
		return fmt.Errorf("pending: redis del: %w", err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys on its own.
func (r *RedisStore) Sweep(context.Context) (int, error) { return 0, nil }

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error { return r.client.Close() }
