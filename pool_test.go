package spendgate_test

import (
	"testing"

	sg "github.com/everlume/spendgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DebitAndTopUp(t *testing.T) {
	pool := sg.NewResourcePool(100, 1000)

	pool.Debit(40)
	assert.Equal(t, 60, pool.Balance())

	pool.CreditTopUp(500)
	assert.Equal(t, 560, pool.Balance())

	// No floor check: the pool trusts its caller.
	pool.Debit(1000)
	assert.Equal(t, -440, pool.Balance())
}

// Tier recompute changes totals only; consumed usage survives (Scenario D).
func TestPool_ApplyTierQuotas_PreservesUsage(t *testing.T) {
	pool := sg.NewResourcePool(0, 0)
	pool.ApplyTierQuotas(sg.TierEssential, sg.DefaultTierQuotas)

	sq, ok := pool.GetSubQuota(sg.QuotaLivingMoments)
	require.True(t, ok)
	assert.Equal(t, 2, sq.Total)

	pool.IncrementSubQuotaUsage(sg.QuotaLivingMoments)
	pool.IncrementSubQuotaUsage(sg.QuotaLivingMoments)

	pool.ApplyTierQuotas(sg.TierFamily, sg.DefaultTierQuotas)

	sq, _ = pool.GetSubQuota(sg.QuotaLivingMoments)
	assert.Equal(t, 10, sq.Total)
	assert.Equal(t, 2, sq.Used, "usage must not reset on tier change")
}

func TestPool_ApplyTierQuotas_Idempotent(t *testing.T) {
	pool := sg.NewResourcePool(0, 0)
	pool.ApplyTierQuotas(sg.TierFamily, sg.DefaultTierQuotas)
	pool.IncrementSubQuotaUsage(sg.QuotaPremiumRestores)

	pool.ApplyTierQuotas(sg.TierFamily, sg.DefaultTierQuotas)
	pool.ApplyTierQuotas(sg.TierFamily, sg.DefaultTierQuotas)

	sq, _ := pool.GetSubQuota(sg.QuotaPremiumRestores)
	assert.Equal(t, 20, sq.Total)
	assert.Equal(t, 1, sq.Used)
}

func TestPool_IncrementUntrackedQuota(t *testing.T) {
	pool := sg.NewResourcePool(0, 0)

	pool.IncrementSubQuotaUsage("newFeature")

	sq, ok := pool.GetSubQuota("newFeature")
	require.True(t, ok)
	assert.Equal(t, 1, sq.Used)
	assert.Equal(t, 0, sq.Total)
}

func TestPool_ResetPeriod_DrainsRollover(t *testing.T) {
	pool := sg.NewResourcePool(300, 1000)
	pool.ApplyTierQuotas(sg.TierFamily, sg.DefaultTierQuotas)
	pool.IncrementSubQuotaUsage(sg.QuotaLivingMoments)

	pool.ResetPeriod()

	assert.Equal(t, 300, pool.Rollover())
	assert.Equal(t, 1300, pool.Balance())

	sq, _ := pool.GetSubQuota(sg.QuotaLivingMoments)
	assert.Equal(t, 0, sq.Used, "period reset is the one place usage restarts")
	assert.Equal(t, 10, sq.Total)
}

func TestPool_ResetPeriod_NegativeBalanceCarriesNothing(t *testing.T) {
	pool := sg.NewResourcePool(-50, 1000)

	pool.ResetPeriod()

	assert.Equal(t, 0, pool.Rollover())
	assert.Equal(t, 1000, pool.Balance())
}

func TestPool_Storage(t *testing.T) {
	pool := sg.NewResourcePool(0, 0)
	pool.SetStorageLimit(10)
	pool.SetStorageUsed(2.5)

	assert.InDelta(t, 7.5, pool.StorageRemaining(), 1e-9)

	// Overshoot is representable; enforcement lives in the upload path.
	pool.SetStorageUsed(12)
	assert.InDelta(t, -2, pool.StorageRemaining(), 1e-9)

	pool.SetStorageUsed(-1)
	snap := pool.Snapshot()
	assert.Equal(t, 0.0, snap.StorageUsed)
}

func TestPool_SnapshotIsDetached(t *testing.T) {
	pool := sg.NewResourcePool(100, 1000)
	pool.ApplyTierQuotas(sg.TierEssential, sg.DefaultTierQuotas)

	snap := pool.Snapshot()
	snap.SubQuotas[sg.QuotaLivingMoments] = sg.SubQuota{Total: 99, Used: 99}

	sq, _ := pool.GetSubQuota(sg.QuotaLivingMoments)
	assert.Equal(t, 2, sq.Total)
	assert.Equal(t, 0, sq.Used)
}

func TestRestorePool_RoundTrip(t *testing.T) {
	pool := sg.NewResourcePool(750, 1000)
	pool.ApplyTierQuotas(sg.TierFamily, sg.DefaultTierQuotas)
	pool.IncrementSubQuotaUsage(sg.QuotaLivingMoments)
	pool.SetStorageLimit(10)
	pool.SetStorageUsed(3)

	restored := sg.RestorePool(pool.Snapshot())

	assert.Equal(t, pool.Snapshot(), restored.Snapshot())
}
