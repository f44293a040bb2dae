package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/reportscore/internal/db"
	"github.com/kailas-cloud/reportscore/internal/domain"
)

// DefaultKey is where the current artifact lives in Redis.
const DefaultKey = domain.KeyPrefix + "artifact:current"

// kv is the consumer interface for the Redis backend (ISP).
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// RedisStore keeps the artifact under a single key. A SET replaces the value
// atomically.
type RedisStore struct {
	store kv
	key   string
}

// NewRedisStore creates a Redis-backed artifact store. An empty key selects
// DefaultKey.
func NewRedisStore(s kv, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{store: s, key: key}
}

// Key returns the Redis key holding the artifact.
func (s *RedisStore) Key() string { return s.key }

// Save encodes the bundle and stores it with one SET.
func (s *RedisStore) Save(ctx context.Context, b Bundle) error {
	blob, err := Encode(b)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, blob); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrArtifactWrite, err)
	}
	return nil
}

// Load fetches and decodes the artifact.
func (s *RedisStore) Load(ctx context.Context) (Bundle, error) {
	blob, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return Bundle{}, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, s.key)
		}
		return Bundle{}, fmt.Errorf("load artifact %s: %w", s.key, err)
	}
	return Decode(blob)
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
