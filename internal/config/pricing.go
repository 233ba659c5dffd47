package config

import "github.com/oceanis-yachts/sales-api/internal/pricing"

// ToPricing converts the configured commercial scalars into the value object
// consumed by the pricing package. Zero values fall back to the documented
// defaults, so a partial config section only overrides what it sets.
func (p *PricingConfig) ToPricing() pricing.Config {
	cfg := pricing.DefaultConfig()
	if p.AbsoluteDiscountCeiling > 0 {
		cfg.AbsoluteDiscountCeiling = p.AbsoluteDiscountCeiling
	}
	if p.DirectorBaseLimit > 0 {
		cfg.DirectorBaseLimit = p.DirectorBaseLimit
	}
	if p.DirectorOptionsLimit > 0 {
		cfg.DirectorOptionsLimit = p.DirectorOptionsLimit
	}
	if p.StandardBaseLimit > 0 {
		cfg.StandardBaseLimit = p.StandardBaseLimit
	}
	if p.StandardOptionsLimit > 0 {
		cfg.StandardOptionsLimit = p.StandardOptionsLimit
	}
	if p.AmendmentApprovalThreshold > 0 {
		cfg.AmendmentApprovalThreshold = p.AmendmentApprovalThreshold
	}
	if p.MarkupMultiplier > 0 {
		cfg.MarkupMultiplier = p.MarkupMultiplier
	}
	if p.DefaultLaborCostPerHour > 0 {
		cfg.DefaultLaborCostPerHour = p.DefaultLaborCostPerHour
	}
	if p.MarginPct > 0 {
		cfg.MarginPct = p.MarginPct
	}
	if p.TaxPct > 0 {
		cfg.TaxPct = p.TaxPct
	}
	if p.WarrantyPct > 0 {
		cfg.WarrantyPct = p.WarrantyPct
	}
	if p.CommissionPct > 0 {
		cfg.CommissionPct = p.CommissionPct
	}
	return cfg
}
