package openaccess

// Tier identifiers for the two podcast subscriptions offered in the storefront
const (
	TierBonus   = "bonus-tier-subscribers"
	TierPremium = "premium-tier-subscribers"
)

// DefaultEntitlements is the set of tiers granted when a user links their Spotify
// account without having made any prior selection in the storefront
var DefaultEntitlements = Entitlements{TierBonus, TierPremium}

// Entitlements is an unordered set of tier identifiers, representing the subscriptions
// that a user is entitled to. It's represented as a slice so that it serializes to a
// JSON array; duplicates carry no meaning.
type Entitlements []string

// Contains returns true if the given tier is in the set
func (e Entitlements) Contains(tier string) bool {
	for _, t := range e {
		if t == tier {
			return true
		}
	}
	return false
}

// Union returns a new set containing every tier from e followed by any tiers from other
// that were not already present, with duplicates removed
func (e Entitlements) Union(other Entitlements) Entitlements {
	result := make(Entitlements, 0, len(e)+len(other))
	for _, t := range e {
		if !result.Contains(t) {
			result = append(result, t)
		}
	}
	for _, t := range other {
		if !result.Contains(t) {
			result = append(result, t)
		}
	}
	return result
}

// Without returns a new set containing every tier from e that does not appear in other
func (e Entitlements) Without(other Entitlements) Entitlements {
	result := make(Entitlements, 0, len(e))
	for _, t := range e {
		if !other.Contains(t) {
			result = append(result, t)
		}
	}
	return result
}

// Equal reports whether e and other contain the same tiers, irrespective of order or
// duplication
func (e Entitlements) Equal(other Entitlements) bool {
	for _, t := range e {
		if !other.Contains(t) {
			return false
		}
	}
	for _, t := range other {
		if !e.Contains(t) {
			return false
		}
	}
	return true
}

// Normalize returns a non-nil copy of e so that an empty set is encoded as [] rather
// than null
func (e Entitlements) Normalize() Entitlements {
	if e == nil {
		return Entitlements{}
	}
	return e
}
