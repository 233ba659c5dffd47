package pricing

// Material is one material line in a full-analysis cost breakdown
type Material struct {
	Name     string  `json:"name"`
	UnitCost float64 `json:"unitCost"`
	Quantity float64 `json:"quantity"`
}

// Total returns unit cost times quantity
func (m Material) Total() float64 {
	return m.UnitCost * m.Quantity
}

// CostBreakdown is the full costing of a free-form item: materials plus
// labor, with the markup multiplier producing the suggested sales price.
type CostBreakdown struct {
	MaterialsCost    float64 `json:"materialsCost"`
	LaborHours       float64 `json:"laborHours"`
	LaborCostPerHour float64 `json:"laborCostPerHour"`
	LaborCost        float64 `json:"laborCost"`
	TotalCost        float64 `json:"totalCost"`
	SuggestedPrice   float64 `json:"suggestedPrice"`
}

// ComputeCostBreakdown costs a full-analysis item. A zero labor rate falls
// back to the configured default labor cost per hour.
func (c Config) ComputeCostBreakdown(materials []Material, laborHours, laborCostPerHour float64) CostBreakdown {
	if laborCostPerHour == 0 {
		laborCostPerHour = c.DefaultLaborCostPerHour
	}

	var materialsCost float64
	for _, m := range materials {
		materialsCost += m.Total()
	}
	laborCost := laborHours * laborCostPerHour
	totalCost := materialsCost + laborCost

	return CostBreakdown{
		MaterialsCost:    materialsCost,
		LaborHours:       laborHours,
		LaborCostPerHour: laborCostPerHour,
		LaborCost:        laborCost,
		TotalCost:        totalCost,
		SuggestedPrice:   totalCost * c.MarkupMultiplier,
	}
}
