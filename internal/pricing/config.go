// Package pricing holds the pure calculation core of the sales platform:
// quotation pricing, discount policy, replacement-delta pricing, full-cost
// breakdowns and the consolidated impact of approved amendments on a
// contract. Everything here is side-effect free; persistence and rounding to
// two decimals happen at the edges, never inside the calculations.
package pricing

import "math"

// Config is the injected value object carrying the commercial configuration
// scalars (discount tiers, markup, labor defaults). It is loaded once per
// request/session from system configuration and passed down; there is no
// package-level mutable state.
type Config struct {
	// AbsoluteDiscountCeiling is the hard validation limit for any discount
	// percentage. Exceeding it is always a blocking error regardless of role.
	AbsoluteDiscountCeiling float64

	// Director tier: pm_engenharia, diretor_comercial, gerente_comercial.
	DirectorBaseLimit    float64
	DirectorOptionsLimit float64

	// No-approval tier: every other role, including an empty role set.
	StandardBaseLimit    float64
	StandardOptionsLimit float64

	// AmendmentApprovalThreshold is the fixed discount percentage above which
	// an amendment is forced into pending_approval. Independent of role
	// limits and stricter than the advisory warning system.
	AmendmentApprovalThreshold float64

	// MarkupMultiplier converts total cost into suggested price for
	// full-analysis items.
	MarkupMultiplier float64

	// DefaultLaborCostPerHour is used when the reviewer leaves the labor rate
	// blank.
	DefaultLaborCostPerHour float64

	// Informational percentages carried from system configuration.
	MarginPct     float64
	TaxPct        float64
	WarrantyPct   float64
	CommissionPct float64
}

// DefaultConfig returns the documented fallback table used when system
// configuration is unavailable.
func DefaultConfig() Config {
	return Config{
		AbsoluteDiscountCeiling:    30,
		DirectorBaseLimit:          15,
		DirectorOptionsLimit:       12,
		StandardBaseLimit:          10,
		StandardOptionsLimit:       8,
		AmendmentApprovalThreshold: 10,
		MarkupMultiplier:           2.33,
		DefaultLaborCostPerHour:    120,
		MarginPct:                  18,
		TaxPct:                     12,
		WarrantyPct:                2,
		CommissionPct:              3,
	}
}

// Round2 rounds a currency amount to two decimal places. Only call it at
// the point of persistence or display; intermediate results stay unrounded
// to avoid compounding rounding error.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
