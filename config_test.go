package spendgate_test

import (
	"os"
	"path/filepath"
	"testing"

	sg "github.com/everlume/spendgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("zero threshold", func(t *testing.T) {
		cfg := sg.Config{}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "high_cost_threshold")
	})

	t.Run("missing feature key", func(t *testing.T) {
		cfg := sg.Config{
			HighCostThreshold: 500,
			Features:          []sg.FeatureConfig{{Quota: sg.QuotaLivingMoments}},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "key is required")
	})

	t.Run("duplicate feature key", func(t *testing.T) {
		cfg := sg.Config{
			HighCostThreshold: 500,
			Features: []sg.FeatureConfig{
				{Key: "AWAKEN_VIDEO"},
				{Key: "AWAKEN_VIDEO"},
			},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("unknown tier name", func(t *testing.T) {
		cfg := sg.Config{
			HighCostThreshold: 500,
			TierQuotas: map[string]map[sg.QuotaName]int{
				"platinum": {sg.QuotaLivingMoments: 5},
			},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative quota total", func(t *testing.T) {
		cfg := sg.Config{
			HighCostThreshold: 500,
			TierQuotas: map[string]map[sg.QuotaName]int{
				"family": {sg.QuotaLivingMoments: -1},
			},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("default config valid", func(t *testing.T) {
		assert.NoError(t, sg.DefaultConfig().Validate())
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spendgate.yaml")

	t.Setenv("SPENDGATE_THRESHOLD", "250")

	yaml := `
high_cost_threshold: ${SPENDGATE_THRESHOLD}
features:
  - key: AWAKEN_VIDEO
    quota: livingMoments
    always_confirm: true
tier_quotas:
  essential:
    livingMoments: 2
  family:
    livingMoments: 10
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := sg.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.HighCostThreshold)
	require.Len(t, cfg.Features, 1)
	assert.True(t, cfg.Features[0].AlwaysConfirm)

	policy := cfg.Policy()
	assert.Equal(t, 10, policy.Resolve(sg.TierFamily)[sg.QuotaLivingMoments])
	// Unlisted tiers fall back to the most restrictive configured row.
	assert.Equal(t, 2, policy.Resolve(sg.TierFree)[sg.QuotaLivingMoments])
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("high_cost_threshold: 0\n"), 0o600))

	_, err := sg.LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_PolicyDefault(t *testing.T) {
	policy := sg.DefaultConfig().Policy()
	assert.Equal(t, sg.DefaultTierQuotas.Resolve(sg.TierForever), policy.Resolve(sg.TierForever))
}
