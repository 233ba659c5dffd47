package auth

import (
	"context"
	"strings"

	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/pricing"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if user is an administrator
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(domain.RoleAdministrador)
}

// IsEngineeringPM checks if user can run technical reviews
func (u *UserContext) IsEngineeringPM() bool {
	return u.HasAnyRole(domain.RoleAdministrador, domain.RolePMEngenharia)
}

// CanApproveDiscounts checks if user can grant commercial discount approval
func (u *UserContext) CanApproveDiscounts() bool {
	return u.HasAnyRole(domain.RoleAdministrador, domain.RoleDiretorComercial, domain.RoleGerenteComercial)
}

// DiscountTier returns the user's discount authority level
func (u *UserContext) DiscountTier() pricing.Tier {
	return domain.DiscountTier(u.Roles)
}

// GetDisplayNameInitials returns initials from the display name (e.g., "John Doe" -> "JD")
func (u *UserContext) GetDisplayNameInitials() string {
	if u.DisplayName == "" {
		return ""
	}
	parts := strings.Fields(u.DisplayName)
	initials := ""
	for _, part := range parts {
		if len(part) > 0 {
			initials += strings.ToUpper(string(part[0]))
		}
	}
	return initials
}
