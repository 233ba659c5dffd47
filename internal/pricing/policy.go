package pricing

// Tier is the discount authority level derived from a user's role set.
type Tier int

const (
	// TierStandard is the no-approval tier (sales reps, unknown roles).
	TierStandard Tier = iota
	// TierDirector covers the director and engineering-management roles.
	TierDirector
	// TierAdmin gets the absolute ceiling.
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierAdmin:
		return "admin"
	case TierDirector:
		return "director"
	default:
		return "standard"
	}
}

// MaxDiscountForTier resolves the maximum discount percentage a tier may
// apply without escalation. The director and standard tiers return the
// larger of their base/options limits.
func (c Config) MaxDiscountForTier(tier Tier) float64 {
	switch tier {
	case TierAdmin:
		return c.AbsoluteDiscountCeiling
	case TierDirector:
		return maxOf(c.DirectorBaseLimit, c.DirectorOptionsLimit)
	default:
		return maxOf(c.StandardBaseLimit, c.StandardOptionsLimit)
	}
}

// NeedsApproval reports whether the requested discount exceeds the tier
// limit. This is advisory: within the absolute ceiling it produces a
// warning, not a blocking error.
func (c Config) NeedsApproval(requestedDiscountPct float64, tier Tier) bool {
	return requestedDiscountPct > c.MaxDiscountForTier(tier)
}

// RequiresCommercialApproval reports whether an amendment discount forces
// status=pending_approval. This fixed-threshold gate is independent of role
// limits and stricter than the advisory warning system used for quotations.
func (c Config) RequiresCommercialApproval(discountPct float64) bool {
	return discountPct > c.AmendmentApprovalThreshold
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
