package pricing

import "fmt"

// OptionLine is one option on a quotation
type OptionLine struct {
	Name               string
	UnitPrice          float64
	Quantity           float64
	DeliveryImpactDays int
}

// UpgradeLine is one upgrade on a quotation
type UpgradeLine struct {
	Name               string
	Price              float64
	DeliveryImpactDays int
}

// QuoteInput are the inputs to a quotation pricing run
type QuoteInput struct {
	BasePrice          float64
	BaseDeliveryDays   int
	Options            []OptionLine
	Upgrades           []UpgradeLine
	BaseDiscountPct    float64
	OptionsDiscountPct float64
}

// QuoteResult is the computed pricing of a quotation. Amounts are left
// unrounded; round with Round2 at persistence/display time.
type QuoteResult struct {
	TotalOptionsPrice  float64
	TotalUpgradesPrice float64

	FinalBasePrice     float64
	FinalOptionsPrice  float64
	FinalUpgradesPrice float64
	FinalPrice         float64

	BaseDiscountAmount    float64
	OptionsDiscountAmount float64

	MaxDeliveryImpactDays int
	TotalDeliveryDays     int
}

// DiscountCeilingError is the tagged validation error returned when a
// discount percentage exceeds the absolute ceiling. The operation is blocked
// entirely; no partial discount is applied.
type DiscountCeilingError struct {
	Field     string
	Requested float64
	Ceiling   float64
}

func (e *DiscountCeilingError) Error() string {
	return fmt.Sprintf("%s of %.2f%% exceeds the absolute discount ceiling of %.2f%%", e.Field, e.Requested, e.Ceiling)
}

// ComputeQuote prices a quotation: three independent buckets (base, options,
// upgrades) with base using BaseDiscountPct and options AND upgrades sharing
// OptionsDiscountPct (intentional business policy, not a separate rate).
//
// Delivery days aggregate by maximum, never by sum: delivery delays run in
// parallel in the yard, not sequentially.
//
// When either discount exceeds the absolute ceiling the returned error is a
// *DiscountCeilingError and every derived amount in the result falls back to
// the undiscounted base price.
func (c Config) ComputeQuote(in QuoteInput) (QuoteResult, error) {
	res := QuoteResult{
		FinalBasePrice:    in.BasePrice,
		FinalPrice:        in.BasePrice,
		TotalDeliveryDays: in.BaseDeliveryDays,
	}

	if in.BaseDiscountPct > c.AbsoluteDiscountCeiling {
		return res, &DiscountCeilingError{Field: "baseDiscountPct", Requested: in.BaseDiscountPct, Ceiling: c.AbsoluteDiscountCeiling}
	}
	if in.OptionsDiscountPct > c.AbsoluteDiscountCeiling {
		return res, &DiscountCeilingError{Field: "optionsDiscountPct", Requested: in.OptionsDiscountPct, Ceiling: c.AbsoluteDiscountCeiling}
	}

	maxImpact := 0
	for _, opt := range in.Options {
		res.TotalOptionsPrice += opt.UnitPrice * opt.Quantity
		if opt.DeliveryImpactDays > maxImpact {
			maxImpact = opt.DeliveryImpactDays
		}
	}
	for _, up := range in.Upgrades {
		res.TotalUpgradesPrice += up.Price
		if up.DeliveryImpactDays > maxImpact {
			maxImpact = up.DeliveryImpactDays
		}
	}

	res.FinalBasePrice = in.BasePrice * (1 - in.BaseDiscountPct/100)
	res.FinalOptionsPrice = res.TotalOptionsPrice * (1 - in.OptionsDiscountPct/100)
	res.FinalUpgradesPrice = res.TotalUpgradesPrice * (1 - in.OptionsDiscountPct/100)
	res.FinalPrice = res.FinalBasePrice + res.FinalOptionsPrice + res.FinalUpgradesPrice

	res.BaseDiscountAmount = in.BasePrice - res.FinalBasePrice
	res.OptionsDiscountAmount = (res.TotalOptionsPrice - res.FinalOptionsPrice) +
		(res.TotalUpgradesPrice - res.FinalUpgradesPrice)

	res.MaxDeliveryImpactDays = maxImpact
	res.TotalDeliveryDays = in.BaseDeliveryDays + maxImpact

	return res, nil
}
