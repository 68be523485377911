package spendgate

import "sync"

// SubQuota tracks usage against a per-feature cap. The cap is advisory at
// this layer: the pool never rejects an increment that exceeds Total.
type SubQuota struct {
	Total int
	Used  int
}

// PoolSnapshot is an immutable copy of a ResourcePool's state.
type PoolSnapshot struct {
	Balance           int                   `json:"balance"`
	MonthlyAllocation int                   `json:"monthly_allocation"`
	Rollover          int                   `json:"rollover"`
	StorageUsed       float64               `json:"storage_used"`
	StorageLimit      float64               `json:"storage_limit"`
	SubQuotas         map[QuotaName]SubQuota `json:"sub_quotas"`
}

// ResourcePool holds every metered quantity for one tenant session: the
// general spend balance, the rollover carried from the previous period,
// storage accounting, and the named sub-quotas.
//
// The gateway is the sole writer. The presentation layer reads snapshots.
// The pool performs no success/failure reasoning and no cap enforcement;
// those belong to the gateway and the external upload path respectively.
type ResourcePool struct {
	mu                sync.RWMutex
	balance           int
	monthlyAllocation int
	rollover          int
	storageUsed       float64
	storageLimit      float64
	subQuotas         map[QuotaName]*SubQuota
}

// NewResourcePool creates a pool with the given starting balance and
// recurring grant size.
func NewResourcePool(balance, monthlyAllocation int) *ResourcePool {
	return &ResourcePool{
		balance:           balance,
		monthlyAllocation: monthlyAllocation,
		subQuotas:         make(map[QuotaName]*SubQuota),
	}
}

// RestorePool reconstructs a pool from a snapshot, e.g. one loaded from a
// StateStore at session bootstrap.
func RestorePool(snap PoolSnapshot) *ResourcePool {
	p := &ResourcePool{
		balance:           snap.Balance,
		monthlyAllocation: snap.MonthlyAllocation,
		rollover:          snap.Rollover,
		storageUsed:       snap.StorageUsed,
		storageLimit:      snap.StorageLimit,
		subQuotas:         make(map[QuotaName]*SubQuota, len(snap.SubQuotas)),
	}
	for name, sq := range snap.SubQuotas {
		q := sq
		p.subQuotas[name] = &q
	}
	return p
}

// Debit unconditionally decreases the balance. The caller must only invoke
// this after the paid action succeeded; no floor check is performed and the
// balance may go negative.
func (p *ResourcePool) Debit(amount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.balance -= amount
}

// CreditTopUp increases the balance by a purchased top-up. Any user-facing
// notification is the caller's responsibility.
func (p *ResourcePool) CreditTopUp(amount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.balance += amount
}

// IncrementSubQuotaUsage increases the named quota's usage by 1, creating
// the entry if it is not yet tracked. No check against Total is performed.
func (p *ResourcePool) IncrementSubQuotaUsage(name QuotaName) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sq, ok := p.subQuotas[name]
	if !ok {
		sq = &SubQuota{}
		p.subQuotas[name] = sq
	}
	sq.Used++
}

// ApplyTierQuotas recomputes every sub-quota's Total from the policy table
// for the given tier. Used counts are never touched: a tier change must not
// reset consumed usage. Idempotent.
func (p *ResourcePool) ApplyTierQuotas(tier Tier, policy TierQuotaPolicy) {
	totals := policy.Resolve(tier)

	p.mu.Lock()
	defer p.mu.Unlock()

	for name, total := range totals {
		sq, ok := p.subQuotas[name]
		if !ok {
			sq = &SubQuota{}
			p.subQuotas[name] = sq
		}
		sq.Total = total
	}
}

// ResetPeriod rolls the pool into a new billing period: the unspent balance
// is carried as rollover, the new balance is the recurring grant plus that
// rollover, and every sub-quota's usage restarts at zero. The period
// boundary is the only point where Used may decrease.
func (p *ResourcePool) ResetPeriod() {
	p.mu.Lock()
	defer p.mu.Unlock()

	carried := p.balance
	if carried < 0 {
		carried = 0
	}
	p.rollover = carried
	p.balance = p.monthlyAllocation + carried

	for _, sq := range p.subQuotas {
		sq.Used = 0
	}
}

// SetStorageUsed records current storage consumption. Values below zero are
// clamped; exceeding the limit is representable (enforcement belongs to the
// upload path).
func (p *ResourcePool) SetStorageUsed(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	p.storageUsed = v
}

// SetStorageLimit records the storage cap for the current tier.
func (p *ResourcePool) SetStorageLimit(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.storageLimit = v
}

// StorageRemaining returns the advisory headroom. May be negative.
func (p *ResourcePool) StorageRemaining() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.storageLimit - p.storageUsed
}

// Balance returns the current spend balance.
func (p *ResourcePool) Balance() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.balance
}

// Rollover returns the amount carried from the previous period.
func (p *ResourcePool) Rollover() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.rollover
}

// GetSubQuota returns the named sub-quota. The second return is false when
// the quota is not tracked.
func (p *ResourcePool) GetSubQuota(name QuotaName) (SubQuota, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sq, ok := p.subQuotas[name]
	if !ok {
		return SubQuota{}, false
	}
	return *sq, true
}

// Snapshot returns an immutable copy of the pool state.
func (p *ResourcePool) Snapshot() PoolSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := PoolSnapshot{
		Balance:           p.balance,
		MonthlyAllocation: p.monthlyAllocation,
		Rollover:          p.rollover,
		StorageUsed:       p.storageUsed,
		StorageLimit:      p.storageLimit,
		SubQuotas:         make(map[QuotaName]SubQuota, len(p.subQuotas)),
	}
	for name, sq := range p.subQuotas {
		snap.SubQuotas[name] = *sq
	}
	return snap
}
