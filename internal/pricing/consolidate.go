package pricing

// ApprovedImpact is the contribution of one approved amendment, as fed into
// the consolidation fold. EffectivePriceImpact substitutes replacement
// deltas for superseded upgrades; GrossPriceImpact is the raw uncorrected
// sum kept for audit display.
type ApprovedImpact struct {
	Number               string
	EffectivePriceImpact float64
	GrossPriceImpact     float64
	DeliveryDays         int
}

// ImpactEntry explains one amendment's contribution in the consolidated
// breakdown. Correction is gross minus effective (zero when the amendment
// contains no replacements).
type ImpactEntry struct {
	Number          string  `json:"number"`
	GrossImpact     float64 `json:"grossImpact"`
	EffectiveImpact float64 `json:"effectiveImpact"`
	Correction      float64 `json:"correction"`
	DeliveryDays    int     `json:"deliveryDays"`
}

// ConsolidatedImpact is the real total financial and schedule impact of all
// approved amendments on a contract. The gross total is shown struck through
// in audit views when it differs from the corrected total.
type ConsolidatedImpact struct {
	TotalPrice        float64       `json:"totalPrice"`
	GrossTotalPrice   float64       `json:"grossTotalPrice"`
	TotalDeliveryDays int           `json:"totalDeliveryDays"`
	MaxDeliveryImpact int           `json:"maxDeliveryImpact"`
	HasCorrection     bool          `json:"hasCorrection"`
	Breakdown         []ImpactEntry `json:"breakdown"`
}

// ConsolidateImpacts folds the approved amendments of a contract into its
// consolidated totals. Price impacts sum (effective, delta-corrected);
// delivery impacts take the maximum, never the sum, because schedule delays
// run in parallel.
func ConsolidateImpacts(basePrice float64, baseDeliveryDays int, impacts []ApprovedImpact) ConsolidatedImpact {
	out := ConsolidatedImpact{
		TotalPrice:      basePrice,
		GrossTotalPrice: basePrice,
		Breakdown:       make([]ImpactEntry, 0, len(impacts)),
	}

	for _, imp := range impacts {
		out.TotalPrice += imp.EffectivePriceImpact
		out.GrossTotalPrice += imp.GrossPriceImpact
		if imp.DeliveryDays > out.MaxDeliveryImpact {
			out.MaxDeliveryImpact = imp.DeliveryDays
		}
		out.Breakdown = append(out.Breakdown, ImpactEntry{
			Number:          imp.Number,
			GrossImpact:     imp.GrossPriceImpact,
			EffectiveImpact: imp.EffectivePriceImpact,
			Correction:      imp.GrossPriceImpact - imp.EffectivePriceImpact,
			DeliveryDays:    imp.DeliveryDays,
		})
	}

	out.TotalDeliveryDays = baseDeliveryDays + out.MaxDeliveryImpact
	out.HasCorrection = out.GrossTotalPrice != out.TotalPrice
	return out
}
