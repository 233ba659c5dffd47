package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oceanis-yachts/sales-api/internal/pricing"
)

func TestDiscountTier(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  pricing.Tier
	}{
		{name: "administrator", roles: []string{RoleAdministrador}, want: pricing.TierAdmin},
		{name: "administrator wins over other roles", roles: []string{RoleVendedor, RoleAdministrador}, want: pricing.TierAdmin},
		{name: "engineering PM", roles: []string{RolePMEngenharia}, want: pricing.TierDirector},
		{name: "commercial director", roles: []string{RoleDiretorComercial}, want: pricing.TierDirector},
		{name: "commercial manager", roles: []string{RoleGerenteComercial}, want: pricing.TierDirector},
		{name: "salesperson", roles: []string{RoleVendedor}, want: pricing.TierStandard},
		{name: "unknown role", roles: []string{"estagiario"}, want: pricing.TierStandard},
		{name: "empty role set", roles: nil, want: pricing.TierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiscountTier(tt.roles))
		})
	}
}

func TestUserHasRole(t *testing.T) {
	u := User{Roles: []string{RoleVendedor, RoleGerenteComercial}}

	assert.True(t, u.HasRole(RoleVendedor))
	assert.True(t, u.HasRole(RoleGerenteComercial))
	assert.False(t, u.HasRole(RoleAdministrador))
}
