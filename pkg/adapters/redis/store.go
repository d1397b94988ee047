package redis

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/duvall/marquee/pkg/domain"
)

// Store implements ports.SettingsStore on Redis. Presets are opaque blobs
// under "<prefix><namespace>:<key>", indexed per namespace in a set so List
// needs no SCAN.
type Store struct {
	client *backend.Client
	prefix string
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore creates a settings store from an existing client.
func NewStore(client *backend.Client, opts ...StoreOption) *Store {
	s := &Store{
		client: client,
		prefix: "marquee:settings:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(namespace, key string) string {
	return s.prefix + namespace + ":" + key
}

func (s *Store) indexKey(namespace string) string {
	return s.prefix + namespace + ":index"
}

// Get retrieves a value.
func (s *Store) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(namespace, key)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrPresetNotFound
		}
		return nil, fmt.Errorf("reading setting %s/%s: %w", namespace, key, err)
	}
	return val, nil
}

// Set stores a value and indexes the key.
func (s *Store) Set(ctx context.Context, namespace, key string, value []byte) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(namespace, key), value, 0)
	pipe.SAdd(ctx, s.indexKey(namespace), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing setting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes a value and its index entry.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(namespace, key))
	pipe.SRem(ctx, s.indexKey(namespace), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting setting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// List returns the keys present in a namespace.
func (s *Store) List(ctx context.Context, namespace string) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey(namespace)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing settings in %s: %w", namespace, err)
	}
	return keys, nil
}
