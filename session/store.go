package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when the durable store has no Redis
// client behind it.
var ErrStoreUnavailable = errors.New("durable token store unavailable")

// TokenStore records durable token presence per device. It is the
// server-side analog of a token persisted in browser local storage:
// the login flow writes it, the logout flow deletes it, and the
// client-context decision service reads presence from it. The edge
// path never touches this store — edge decisions are cookie-only and
// synchronous.
type TokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// StoreConfig configures a TokenStore.
type StoreConfig struct {
	// Prefix namespaces keys; defaults to "routegate".
	Prefix string
	// TTL bounds how long presence survives without refresh.
	// Zero means no expiry.
	TTL time.Duration
}

// NewTokenStore wraps client with the given config.
func NewTokenStore(client *redis.Client, cfg StoreConfig) *TokenStore {
	if cfg.Prefix == "" {
		cfg.Prefix = "routegate"
	}
	return &TokenStore{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}
}

func (s *TokenStore) key(deviceID string) string {
	return s.prefix + ":durable:" + deviceID
}

// Save records that deviceID holds a durable token.
func (s *TokenStore) Save(ctx context.Context, deviceID string) error {
	if s == nil || s.client == nil {
		return ErrStoreUnavailable
	}
	if deviceID == "" {
		return errors.New("empty device id")
	}
	if err := s.client.Set(ctx, s.key(deviceID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("save durable token: %w", err)
	}
	return nil
}

// Present reports whether deviceID holds a durable token.
func (s *TokenStore) Present(ctx context.Context, deviceID string) (bool, error) {
	if s == nil || s.client == nil {
		return false, ErrStoreUnavailable
	}
	if deviceID == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, s.key(deviceID)).Result()
	if err != nil {
		return false, fmt.Errorf("durable token lookup: %w", err)
	}
	return n > 0, nil
}

// Delete removes the durable token record for deviceID. Deleting a
// missing record is not an error.
func (s *TokenStore) Delete(ctx context.Context, deviceID string) error {
	if s == nil || s.client == nil {
		return ErrStoreUnavailable
	}
	if deviceID == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(deviceID)).Err(); err != nil {
		return fmt.Errorf("delete durable token: %w", err)
	}
	return nil
}
