package models

// Tier identifies one of the three backend classes, ordered by ascending
// cost and latency. The zero value is not a valid tier.
type Tier string

const (
	// TierLight is the locally hosted small model. Cheapest, least reliable,
	// and the only tier eligible for fallback.
	TierLight Tier = "light"

	// TierStandard is the fast hosted model for medium-length turns.
	TierStandard Tier = "standard"

	// TierPremium is the high-quality hosted model for long or complex turns.
	TierPremium Tier = "premium"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierLight, TierStandard, TierPremium:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t)
}

// Above reports whether t is a strictly more expensive tier than other.
func (t Tier) Above(other Tier) bool {
	return t.rank() > other.rank()
}

func (t Tier) rank() int {
	switch t {
	case TierLight:
		return 0
	case TierStandard:
		return 1
	case TierPremium:
		return 2
	default:
		return -1
	}
}

// AllTiers lists every tier in ascending cost order.
func AllTiers() []Tier {
	return []Tier{TierLight, TierStandard, TierPremium}
}
