package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to every Redis key unless overridden.
const DefaultRedisPrefix = "memo:"

// Redis stores entries in a Redis server.
//
// Keys are the prefix followed by the hex SHA-256 (first 16 bytes) of the
// key's Encode form. Values are stored as JSON, and Get returns them as Raw
// for the reader to decode into the types it expects. Expiry, when
// configured, is enforced by Redis itself.
//
// Keys are matched by content, not identity: two pointers to equal values
// share one entry, unlike in the in-memory stores. Stores on one server with
// the same prefix share a key space, so give each memoized function its own
// prefix (WithPrefix) unless sharing entries is intended.
type Redis struct {
	client     redis.UniversalClient
	prefix     string
	expiration time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithExpiration makes Redis expire entries after d. Zero means never.
func WithExpiration(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.expiration = d
	}
}

// NewRedis creates a Redis store on top of client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	r := &Redis{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Key returns the Redis key used for key.
// Format: <prefix><hash>, where hash is 32 lowercase hex characters.
func (r *Redis) Key(key any) (string, error) {
	canonical, err := Encode(key)
	if err != nil {
		return "", fmt.Errorf("cache: failed to encode key: %w", err)
	}
	hash := sha256.Sum256(canonical)
	return r.prefix + hex.EncodeToString(hash[:16]), nil
}

// Get retrieves a value as Raw JSON. Returns (nil, false) on miss, on
// unencodable keys and on Redis errors.
func (r *Redis) Get(ctx context.Context, key any) (any, bool) {
	k, err := r.Key(key)
	if err != nil {
		return nil, false
	}
	b, err := r.client.Get(ctx, k).Bytes()
	if err != nil {
		return nil, false
	}
	return Raw(b), true
}

// Set stores value as JSON. A Raw value is stored as is.
func (r *Redis) Set(ctx context.Context, key any, value any) error {
	k, err := r.Key(key)
	if err != nil {
		return err
	}

	var b []byte
	if raw, ok := value.(Raw); ok {
		b = raw
	} else if b, err = json.Marshal(value); err != nil {
		return fmt.Errorf("cache: failed to encode value: %w", err)
	}

	if err := r.client.Set(ctx, k, b, r.expiration).Err(); err != nil {
		return fmt.Errorf("cache: redis set failed: %w", err)
	}
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (r *Redis) Delete(ctx context.Context, key any) error {
	k, err := r.Key(key)
	if err != nil {
		return err
	}
	if err := r.client.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("cache: redis delete failed: %w", err)
	}
	return nil
}

// Ensure Redis implements Store
var _ Store = (*Redis)(nil)
