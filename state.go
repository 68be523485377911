package spendgate

import "context"

// StateStore persists pool snapshots across sessions. The ledger itself is
// in-memory; a store is only the boundary through which an external
// collaborator bootstraps and reconciles it.
type StateStore interface {
	// Save persists a snapshot for a tenant, replacing any previous one.
	Save(ctx context.Context, tenantID string, snap PoolSnapshot) error

	// Load returns the last saved snapshot for a tenant.
	// Returns ErrTenantNotFound if none exists.
	Load(ctx context.Context, tenantID string) (PoolSnapshot, error)
}
