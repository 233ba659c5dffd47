package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxDiscountForTier(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		tier Tier
		want float64
	}{
		{name: "admin gets the absolute ceiling", tier: TierAdmin, want: 30},
		{name: "director tier", tier: TierDirector, want: 15},
		{name: "standard tier", tier: TierStandard, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.MaxDiscountForTier(tt.tier))
		})
	}
}

func TestMaxDiscountForTier_ReturnsLargerTierLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DirectorBaseLimit = 12
	cfg.DirectorOptionsLimit = 18

	assert.Equal(t, 18.0, cfg.MaxDiscountForTier(TierDirector))
}

func TestNeedsApproval(t *testing.T) {
	cfg := DefaultConfig()

	// Advisory warning above the tier, none at or below it
	assert.True(t, cfg.NeedsApproval(12, TierStandard))
	assert.False(t, cfg.NeedsApproval(10, TierStandard))
	assert.False(t, cfg.NeedsApproval(15, TierDirector))
	assert.True(t, cfg.NeedsApproval(16, TierDirector))
	assert.False(t, cfg.NeedsApproval(29, TierAdmin))
}

func TestRequiresCommercialApproval(t *testing.T) {
	cfg := DefaultConfig()

	// Fixed 10% threshold, independent of role limits
	assert.False(t, cfg.RequiresCommercialApproval(10))
	assert.True(t, cfg.RequiresCommercialApproval(10.5))
	assert.True(t, cfg.RequiresCommercialApproval(12))
	assert.False(t, cfg.RequiresCommercialApproval(0))
}
