package spendgate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level gateway configuration.
type Config struct {
	// HighCostThreshold is the cost at or above which a request must be
	// confirmed interactively.
	HighCostThreshold int `yaml:"high_cost_threshold"`

	// Features maps feature keys to their sub-quota and confirmation rule.
	// Keys absent from this table consume only the general balance.
	Features []FeatureConfig `yaml:"features"`

	// TierQuotas overrides the built-in tier quota table when non-empty.
	// Keyed by tier name.
	TierQuotas map[string]map[QuotaName]int `yaml:"tier_quotas"`
}

// FeatureConfig configures a single metered feature.
type FeatureConfig struct {
	Key           string    `yaml:"key"`
	Quota         QuotaName `yaml:"quota"`
	AlwaysConfirm bool      `yaml:"always_confirm"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		HighCostThreshold: 500,
		Features: []FeatureConfig{
			{Key: "AWAKEN_VIDEO", Quota: QuotaLivingMoments, AlwaysConfirm: true},
			{Key: "PREMIUM_RESTORE", Quota: QuotaPremiumRestores},
		},
	}
}

// LoadConfig reads and parses a YAML config file.
// Environment variables in the format ${VAR} are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("spendgate: read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("spendgate: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the config for required fields and consistency.
func (c Config) Validate() error {
	if c.HighCostThreshold <= 0 {
		return fmt.Errorf("spendgate: config: high_cost_threshold must be positive")
	}

	keys := make(map[string]bool, len(c.Features))
	for i, f := range c.Features {
		if f.Key == "" {
			return fmt.Errorf("spendgate: config: features[%d]: key is required", i)
		}
		if keys[f.Key] {
			return fmt.Errorf("spendgate: config: duplicate feature key %q", f.Key)
		}
		keys[f.Key] = true
	}

	for tierName, row := range c.TierQuotas {
		if _, err := ParseTier(tierName); err != nil {
			return fmt.Errorf("spendgate: config: tier_quotas: %w", err)
		}
		for quota, total := range row {
			if total < 0 {
				return fmt.Errorf("spendgate: config: tier_quotas[%s][%s]: total must be non-negative", tierName, quota)
			}
		}
	}

	return nil
}

// Policy returns the tier quota table, either the configured override or
// the built-in default. Config must be validated first.
func (c Config) Policy() TierQuotaPolicy {
	if len(c.TierQuotas) == 0 {
		return DefaultTierQuotas
	}

	p := make(TierQuotaPolicy, len(c.TierQuotas))
	for tierName, row := range c.TierQuotas {
		tier, err := ParseTier(tierName)
		if err != nil {
			continue
		}
		quotas := make(map[QuotaName]int, len(row))
		for name, total := range row {
			quotas[name] = total
		}
		p[tier] = quotas
	}
	return p
}

// feature looks up the feature table entry for a key.
func (c Config) feature(key string) (FeatureConfig, bool) {
	for _, f := range c.Features {
		if f.Key == key {
			return f, true
		}
	}
	return FeatureConfig{}, false
}
