// Package state provides StateStore implementations for spendgate.
package state

import (
	"context"
	"sync"

	"github.com/everlume/spendgate"
)

// MemoryStore is an in-memory StateStore.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]spendgate.PoolSnapshot
}

var _ spendgate.StateStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snaps: make(map[string]spendgate.PoolSnapshot),
	}
}

// Save persists a snapshot for a tenant, replacing any previous one.
func (s *MemoryStore) Save(_ context.Context, tenantID string, snap spendgate.PoolSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snaps[tenantID] = copySnapshot(snap)
	return nil
}

// Load returns the last saved snapshot for a tenant.
func (s *MemoryStore) Load(_ context.Context, tenantID string) (spendgate.PoolSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[tenantID]
	if !ok {
		return spendgate.PoolSnapshot{}, spendgate.ErrTenantNotFound
	}
	return copySnapshot(snap), nil
}

// copySnapshot detaches the sub-quota map so stored state cannot be mutated
// through a caller's reference.
func copySnapshot(snap spendgate.PoolSnapshot) spendgate.PoolSnapshot {
	out := snap
	out.SubQuotas = make(map[spendgate.QuotaName]spendgate.SubQuota, len(snap.SubQuotas))
	for name, sq := range snap.SubQuotas {
		out.SubQuotas[name] = sq
	}
	return out
}
