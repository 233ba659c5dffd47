package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReplacementDelta(t *testing.T) {
	tests := []struct {
		name          string
		newUnitPrice  float64
		quantity      float64
		existingPrice float64
		want          float64
	}{
		{name: "upgrade to a pricier item", newUnitPrice: 1500, quantity: 1, existingPrice: 1000, want: 500},
		{name: "downgrade produces a credit", newUnitPrice: 800, quantity: 1, existingPrice: 1000, want: -200},
		{name: "quantity multiplies the new price", newUnitPrice: 600, quantity: 2, existingPrice: 1000, want: 200},
		{name: "no existing upgrade means full gross price", newUnitPrice: 1500, quantity: 1, existingPrice: 0, want: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplacementDelta(tt.newUnitPrice, tt.quantity, tt.existingPrice))
		})
	}
}

func TestNewReplacementConflict(t *testing.T) {
	existingID := uuid.New()

	conflict := NewReplacementConflict(existingID, "Generator 17.5kW", 1000, "contract", "Generator 22.5kW", 1500, 1)
	assert.Equal(t, existingID, conflict.ExistingUpgradeID)
	assert.Equal(t, "contract", conflict.Source)
	assert.Equal(t, 1500.0, conflict.NewUpgradePrice)
	assert.Equal(t, 500.0, conflict.Delta)
	assert.True(t, conflict.IsPositiveDelta)

	credit := NewReplacementConflict(existingID, "Generator 17.5kW", 1000, "ATO-VC-2025-001-002", "Generator 11kW", 800, 1)
	assert.Equal(t, -200.0, credit.Delta)
	assert.False(t, credit.IsPositiveDelta)
}
