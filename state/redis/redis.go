// Package redis provides a Redis-backed StateStore for spendgate.
//
// Snapshots are stored whole as JSON strings, one key per tenant. A session
// reads and writes its own snapshot as a unit, so no partial atomic
// operations are needed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/everlume/spendgate"
)

// Store is a Redis-backed StateStore.
type Store struct {
	client    goredis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

var _ spendgate.StateStore = (*Store)(nil)

// Option configures Store.
type Option func(*Store)

// WithKeyPrefix sets the Redis key prefix (default "spendgate:state:").
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keyPrefix = prefix }
}

// WithTTL sets an expiry on saved snapshots (default none).
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a new Redis-backed StateStore.
// The client must be a connected *goredis.Client or *goredis.ClusterClient.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client:    client,
		keyPrefix: "spendgate:state:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) tenantKey(tenantID string) string {
	return s.keyPrefix + tenantID
}

// Save persists a snapshot for a tenant, replacing any previous one.
func (s *Store) Save(ctx context.Context, tenantID string, snap spendgate.PoolSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("spendgate/redis: marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, s.tenantKey(tenantID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("spendgate/redis: save snapshot: %w", err)
	}
	return nil
}

// Load returns the last saved snapshot for a tenant.
func (s *Store) Load(ctx context.Context, tenantID string) (spendgate.PoolSnapshot, error) {
	data, err := s.client.Get(ctx, s.tenantKey(tenantID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return spendgate.PoolSnapshot{}, spendgate.ErrTenantNotFound
	}
	if err != nil {
		return spendgate.PoolSnapshot{}, fmt.Errorf("spendgate/redis: load snapshot: %w", err)
	}

	var snap spendgate.PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return spendgate.PoolSnapshot{}, fmt.Errorf("spendgate/redis: unmarshal snapshot: %w", err)
	}
	return snap, nil
}
