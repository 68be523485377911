package spendgate

import "fmt"

// Tier is a subscription level. Constants are ordered from most to least
// restrictive; comparing tiers with < and > follows that ordering.
type Tier int

const (
	TierFree Tier = iota
	TierEssential
	TierFamily
	TierForever
)

func (t Tier) String() string {
	switch t {
	case TierFree:
		return "free"
	case TierEssential:
		return "essential"
	case TierFamily:
		return "family"
	case TierForever:
		return "forever"
	default:
		return "unknown"
	}
}

// ParseTier converts a tier name to its Tier value.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "free":
		return TierFree, nil
	case "essential":
		return TierEssential, nil
	case "family":
		return TierFamily, nil
	case "forever":
		return TierForever, nil
	default:
		return TierFree, fmt.Errorf("spendgate: unknown tier %q", s)
	}
}

// QuotaName identifies an independently capped feature counter, separate
// from the general balance.
type QuotaName string

const (
	QuotaLivingMoments   QuotaName = "livingMoments"
	QuotaPremiumRestores QuotaName = "premiumRestores"
)

// TierQuotaPolicy maps tiers to the size of each named sub-quota.
type TierQuotaPolicy map[Tier]map[QuotaName]int

// DefaultTierQuotas is the production quota table.
var DefaultTierQuotas = TierQuotaPolicy{
	TierFree: {
		QuotaLivingMoments:   0,
		QuotaPremiumRestores: 1,
	},
	TierEssential: {
		QuotaLivingMoments:   2,
		QuotaPremiumRestores: 5,
	},
	TierFamily: {
		QuotaLivingMoments:   10,
		QuotaPremiumRestores: 20,
	},
	TierForever: {
		QuotaLivingMoments:   30,
		QuotaPremiumRestores: 60,
	},
}

// DemoTierQuotas is the promotional table used to seed guest/demo sessions.
// It defines a single row, so every tier resolves to the same enlarged
// limits via the most-restrictive fallback.
var DemoTierQuotas = TierQuotaPolicy{
	TierFree: {
		QuotaLivingMoments:   25,
		QuotaPremiumRestores: 40,
	},
}

// Resolve returns the sub-quota sizes for a tier. An unrecognized tier falls
// back to the most restrictive tier defined in the policy rather than
// failing. The returned map is a copy; callers may mutate it freely.
func (p TierQuotaPolicy) Resolve(tier Tier) map[QuotaName]int {
	row, ok := p[tier]
	if !ok {
		row = p[p.mostRestrictive()]
	}

	out := make(map[QuotaName]int, len(row))
	for name, total := range row {
		out[name] = total
	}
	return out
}

// mostRestrictive returns the lowest tier present in the policy.
func (p TierQuotaPolicy) mostRestrictive() Tier {
	first := true
	var lowest Tier
	for t := range p {
		if first || t < lowest {
			lowest = t
			first = false
		}
	}
	return lowest
}
