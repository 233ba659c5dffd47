package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oceanis-yachts/sales-api/internal/auth"
	"github.com/oceanis-yachts/sales-api/internal/config"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestConfig(jwksURL, apiKey string) *config.Config {
	return &config.Config{
		AzureAd: config.AzureAdConfig{
			TenantId:       "test-tenant-id",
			ClientId:       "test-client-id",
			InstanceUrl:    jwksURL + "/",
			RequiredScopes: "",
		},
		ApiKey: config.ApiKeyConfig{
			Value: apiKey,
		},
	}
}

func createTestMiddleware(t *testing.T, jwksURL, apiKey string) *auth.Middleware {
	cfg := createTestConfig(jwksURL, apiKey)
	logger := zap.NewNop()
	return auth.NewMiddleware(cfg, logger)
}

func TestMiddleware_Authenticate_WithAPIKey(t *testing.T) {
	apiKey := "test-api-key-12345"
	middleware := createTestMiddleware(t, "http://localhost", apiKey)

	handlerCalled := false
	var capturedUserCtx *auth.UserContext

	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		capturedUserCtx, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("x-api-key", apiKey)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, capturedUserCtx)
	assert.Equal(t, "Sistema", capturedUserCtx.DisplayName)
	assert.Equal(t, "sistema@oceanis.com.br", capturedUserCtx.Email)
	assert.True(t, capturedUserCtx.HasRole(domain.RoleAdministrador))
}

func TestMiddleware_Authenticate_WithInvalidAPIKey(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "correct-key")

	handlerCalled := false
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("x-api-key", "wrong-key")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_Authenticate_WithJWT(t *testing.T) {
	// Generate test keys
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kid := "test-key-id"

	// Create mock JWKS server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := base64.RawURLEncoding.EncodeToString(privateKey.PublicKey.N.Bytes())
		e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(privateKey.PublicKey.E)).Bytes())
		jwks := map[string]interface{}{
			"keys": []map[string]interface{}{
				{"kty": "RSA", "use": "sig", "kid": kid, "n": n, "e": e, "alg": "RS256"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	defer server.Close()

	middleware := createTestMiddleware(t, server.URL, "")

	// Create valid token
	claims := jwt.MapClaims{
		"aud":   "test-client-id",
		"iss":   "https://login.microsoftonline.com/test-tenant-id/v2.0",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"oid":   "12345678-1234-1234-1234-123456789012",
		"name":  "Test User",
		"email": "test@example.com",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	tokenString, err := token.SignedString(privateKey)
	require.NoError(t, err)

	handlerCalled := false
	var capturedUserCtx *auth.UserContext

	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		capturedUserCtx, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, capturedUserCtx)
	assert.Equal(t, "Test User", capturedUserCtx.DisplayName)
	assert.Equal(t, "test@example.com", capturedUserCtx.Email)
}

func TestMiddleware_Authenticate_MissingAuth(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "test-key")

	handlerCalled := false
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_Authenticate_InvalidBearerFormat(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "test-key")

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no bearer prefix", "some-token"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
			req.Header.Set("Authorization", tt.authHeader)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestMiddleware_RequireRole_HasRole(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "test-key")

	handlerCalled := false
	handler := middleware.RequireRole(domain.RoleGerenteComercial, domain.RoleVendedor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	// Create context with user who has the required role
	userCtx := &auth.UserContext{
		Roles: []string{domain.RoleVendedor},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), userCtx))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_RequireRole_MissingRole(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "test-key")

	handlerCalled := false
	handler := middleware.RequireRole(domain.RoleAdministrador)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	// Create context with user who does NOT have the required role
	userCtx := &auth.UserContext{
		Roles: []string{domain.RoleVendedor},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), userCtx))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMiddleware_RequireRole_NoUserContext(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "test-key")

	handlerCalled := false
	handler := middleware.RequireRole(domain.RoleVendedor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	// No user context
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMiddleware_RequireAdmin_IsAdmin(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "test-key")

	handlerCalled := false
	handler := middleware.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	userCtx := &auth.UserContext{
		Roles: []string{domain.RoleAdministrador},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), userCtx))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_RequireAdmin_NotAdmin(t *testing.T) {
	middleware := createTestMiddleware(t, "http://localhost", "test-key")

	handlerCalled := false
	handler := middleware.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	userCtx := &auth.UserContext{
		Roles: []string{domain.RoleDiretorComercial},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req = req.WithContext(auth.WithUserContext(req.Context(), userCtx))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMiddleware_APIKeyPriority(t *testing.T) {
	// Generate test keys for JWT
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	kid := "test-key-id"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := base64.RawURLEncoding.EncodeToString(privateKey.PublicKey.N.Bytes())
		e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(privateKey.PublicKey.E)).Bytes())
		jwks := map[string]interface{}{
			"keys": []map[string]interface{}{
				{"kty": "RSA", "use": "sig", "kid": kid, "n": n, "e": e, "alg": "RS256"},
			},
		}
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	defer server.Close()

	apiKey := "test-api-key"
	middleware := createTestMiddleware(t, server.URL, apiKey)

	// Create valid JWT
	claims := jwt.MapClaims{
		"aud":   "test-client-id",
		"iss":   "https://login.microsoftonline.com/test-tenant-id/v2.0",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"oid":   "12345678-1234-1234-1234-123456789012",
		"name":  "JWT User",
		"email": "jwt@example.com",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	tokenString, err := token.SignedString(privateKey)
	require.NoError(t, err)

	var capturedUserCtx *auth.UserContext

	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserCtx, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Send request with BOTH API key and JWT - API key should take priority
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, capturedUserCtx)
	// Should be the system user (from API key), not the JWT user
	assert.Equal(t, "Sistema", capturedUserCtx.DisplayName)
}
