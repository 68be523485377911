// Package postgres provides a PostgreSQL-backed StateStore for spendgate.
//
// Snapshots are stored as JSONB rows keyed by tenant, giving durability
// across restarts for the external reconciliation path.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/everlume/spendgate"
)

// Store is a PostgreSQL-backed StateStore.
type Store struct {
	pool        *pgxpool.Pool
	tablePrefix string
}

var _ spendgate.StateStore = (*Store)(nil)

// Option configures Store.
type Option func(*Store)

// WithTablePrefix sets the table name prefix (default "spendgate_").
func WithTablePrefix(prefix string) Option {
	return func(s *Store) { s.tablePrefix = prefix }
}

// New creates a new PostgreSQL-backed StateStore.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:        pool,
		tablePrefix: "spendgate_",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) stateTable() string { return s.tablePrefix + "state" }

// EnsureSchema creates the required table if it doesn't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			tenant_id TEXT PRIMARY KEY,
			snapshot JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`, s.stateTable())
	_, err := s.pool.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("spendgate/postgres: ensure schema: %w", err)
	}
	return nil
}

// Save persists a snapshot for a tenant, replacing any previous one.
func (s *Store) Save(ctx context.Context, tenantID string, snap spendgate.PoolSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("spendgate/postgres: marshal snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (tenant_id, snapshot, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (tenant_id) DO UPDATE SET snapshot = $2, updated_at = now()`,
			s.stateTable()),
		tenantID, data,
	)
	if err != nil {
		return fmt.Errorf("spendgate/postgres: save snapshot: %w", err)
	}
	return nil
}

// Load returns the last saved snapshot for a tenant.
func (s *Store) Load(ctx context.Context, tenantID string) (spendgate.PoolSnapshot, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT snapshot FROM %s WHERE tenant_id = $1`, s.stateTable()),
		tenantID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return spendgate.PoolSnapshot{}, spendgate.ErrTenantNotFound
	}
	if err != nil {
		return spendgate.PoolSnapshot{}, fmt.Errorf("spendgate/postgres: load snapshot: %w", err)
	}

	var snap spendgate.PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return spendgate.PoolSnapshot{}, fmt.Errorf("spendgate/postgres: unmarshal snapshot: %w", err)
	}
	return snap, nil
}
