package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/lib/pq"
	"github.com/oceanis-yachts/sales-api/internal/auth"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"go.uber.org/zap"
)

// UserRepository interface for dependency injection
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
}

type AuthHandler struct {
	userRepo    UserRepository
	graphClient *auth.GraphClient
	logger      *zap.Logger
}

func NewAuthHandler(userRepo *repository.UserRepository, graphClient *auth.GraphClient, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo:    userRepo,
		graphClient: graphClient,
		logger:      logger,
	}
}

// NewAuthHandlerWithMocks creates an auth handler with mock dependencies for testing
func NewAuthHandlerWithMocks(userRepo UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the current authenticated user with roles and discount authority
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
		return
	}

	// Upsert user in database
	user := &domain.User{
		ID:          userCtx.UserID,
		DisplayName: userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       pq.StringArray(userCtx.Roles),
	}

	if err := h.userRepo.Upsert(r.Context(), user); err != nil {
		h.logger.Warn("failed to upsert user", zap.Error(err))
	}

	dto := domain.AuthUserDTO{
		ID:                  userCtx.UserID,
		Name:                userCtx.DisplayName,
		Email:               userCtx.Email,
		Roles:               userCtx.Roles,
		Initials:            userCtx.GetDisplayNameInitials(),
		IsAdmin:             userCtx.IsAdmin(),
		CanApproveDiscounts: userCtx.CanApproveDiscounts(),
		DiscountTier:        userCtx.DiscountTier().String(),
	}

	respondJSON(w, http.StatusOK, dto)
}

// Profile godoc
// @Summary Get extended user profile
// @Description Fetches the caller's directory profile (job title, department, phone) from Microsoft Graph
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.GraphUserProfile
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Graph API unavailable"
// @Security BearerAuth
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || h.graphClient == nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "bearer token required"})
		return
	}

	profile, err := h.graphClient.GetUserProfile(r.Context(), token)
	if err != nil {
		h.logger.Warn("failed to fetch graph profile", zap.Error(err))
		respondJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to fetch directory profile"})
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// ListUsers godoc
// @Summary List users
// @Description Returns known users, optionally filtered by role. Used to pick review assignees.
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role" Enums(administrador, pm_engenharia, diretor_comercial, gerente_comercial, vendedor)
// @Success 200 {array} domain.UserDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		userCtx := auth.MustFromContext(r.Context())
		respondJSON(w, http.StatusOK, []domain.UserDTO{{
			ID:    userCtx.UserID,
			Name:  userCtx.DisplayName,
			Email: userCtx.Email,
			Roles: userCtx.Roles,
		}})
		return
	}

	users, err := h.userRepo.ListByRole(r.Context(), role)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err), zap.String("role", role))
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	dtos := make([]domain.UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, domain.UserDTO{
			ID:    u.ID,
			Name:  u.DisplayName,
			Email: u.Email,
			Roles: []string(u.Roles),
		})
	}

	respondJSON(w, http.StatusOK, dtos)
}
