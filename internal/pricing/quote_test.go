package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeQuote_FullScenario(t *testing.T) {
	cfg := DefaultConfig()

	in := QuoteInput{
		BasePrice:        10_900_000,
		BaseDeliveryDays: 180,
		Options: []OptionLine{
			{Name: "Hydraulic swim platform", UnitPrice: 470457.10, Quantity: 1, DeliveryImpactDays: 10},
		},
		Upgrades: []UpgradeLine{
			{Name: "IPS 1350 propulsion", Price: 582552.08, DeliveryImpactDays: 15},
		},
		BaseDiscountPct:    8,
		OptionsDiscountPct: 5,
	}

	res, err := cfg.ComputeQuote(in)
	require.NoError(t, err)

	assert.InDelta(t, 10_028_000.00, res.FinalBasePrice, 0.01)
	assert.InDelta(t, 446_934.25, res.FinalOptionsPrice, 0.01)
	assert.InDelta(t, 553_424.48, res.FinalUpgradesPrice, 0.01)
	assert.InDelta(t, 11_028_358.73, res.FinalPrice, 0.02)
	assert.Equal(t, 195, res.TotalDeliveryDays)
}

func TestComputeQuote_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	in := QuoteInput{
		BasePrice:        2_500_000,
		BaseDeliveryDays: 120,
		Options: []OptionLine{
			{Name: "Teak deck", UnitPrice: 85_000, Quantity: 2, DeliveryImpactDays: 20},
		},
		BaseDiscountPct:    10,
		OptionsDiscountPct: 5,
	}

	first, err := cfg.ComputeQuote(in)
	require.NoError(t, err)
	second, err := cfg.ComputeQuote(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeQuote_DiscountCeiling(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		baseDisc  float64
		optsDisc  float64
		wantField string
	}{
		{name: "base over ceiling", baseDisc: 31, optsDisc: 0, wantField: "baseDiscountPct"},
		{name: "options over ceiling", baseDisc: 0, optsDisc: 30.5, wantField: "optionsDiscountPct"},
		{name: "both over, base reported first", baseDisc: 50, optsDisc: 50, wantField: "baseDiscountPct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := cfg.ComputeQuote(QuoteInput{
				BasePrice:          1_000_000,
				BaseDeliveryDays:   90,
				Options:            []OptionLine{{Name: "Radar", UnitPrice: 50_000, Quantity: 1}},
				BaseDiscountPct:    tt.baseDisc,
				OptionsDiscountPct: tt.optsDisc,
			})
			require.Error(t, err)

			var ceilingErr *DiscountCeilingError
			require.True(t, errors.As(err, &ceilingErr))
			assert.Equal(t, tt.wantField, ceilingErr.Field)
			assert.Equal(t, 30.0, ceilingErr.Ceiling)

			// No partial discount: everything falls back to the base price
			assert.Equal(t, 1_000_000.0, res.FinalPrice)
			assert.Equal(t, 1_000_000.0, res.FinalBasePrice)
			assert.Zero(t, res.FinalOptionsPrice)
		})
	}
}

func TestComputeQuote_CeilingBoundaryAllowed(t *testing.T) {
	cfg := DefaultConfig()
	res, err := cfg.ComputeQuote(QuoteInput{
		BasePrice:          1_000_000,
		BaseDiscountPct:    30,
		OptionsDiscountPct: 30,
	})
	require.NoError(t, err)
	assert.InDelta(t, 700_000, res.FinalPrice, 0.01)
}

func TestComputeQuote_DeliveryDaysMaxNotSum(t *testing.T) {
	cfg := DefaultConfig()
	res, err := cfg.ComputeQuote(QuoteInput{
		BasePrice:        500_000,
		BaseDeliveryDays: 100,
		Options: []OptionLine{
			{Name: "A", UnitPrice: 1000, Quantity: 1, DeliveryImpactDays: 5},
			{Name: "B", UnitPrice: 1000, Quantity: 1, DeliveryImpactDays: 15},
		},
		Upgrades: []UpgradeLine{
			{Name: "C", Price: 1000, DeliveryImpactDays: 10},
			{Name: "D", Price: 1000, DeliveryImpactDays: 25},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 25, res.MaxDeliveryImpactDays)
	assert.Equal(t, 125, res.TotalDeliveryDays, "delivery impacts run in parallel; 55 would mean they were summed")
}

func TestComputeQuote_UpgradesShareOptionsDiscountRate(t *testing.T) {
	cfg := DefaultConfig()
	res, err := cfg.ComputeQuote(QuoteInput{
		BasePrice:          1_000_000,
		Options:            []OptionLine{{Name: "Opt", UnitPrice: 100_000, Quantity: 1}},
		Upgrades:           []UpgradeLine{{Name: "Up", Price: 100_000}},
		BaseDiscountPct:    0,
		OptionsDiscountPct: 10,
	})
	require.NoError(t, err)

	assert.InDelta(t, 90_000, res.FinalOptionsPrice, 0.01)
	assert.InDelta(t, 90_000, res.FinalUpgradesPrice, 0.01)
}

func TestComputeQuote_QuantityMultipliesOptions(t *testing.T) {
	cfg := DefaultConfig()
	res, err := cfg.ComputeQuote(QuoteInput{
		BasePrice: 0,
		Options:   []OptionLine{{Name: "Fender set", UnitPrice: 1_250.50, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 5_002.00, res.TotalOptionsPrice, 0.001)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 446_934.26, Round2(446_934.256))
	assert.Equal(t, 553_424.48, Round2(553_424.476))
	assert.Equal(t, -200.00, Round2(-200.004))
}
