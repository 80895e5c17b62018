package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type fakeRevocations struct {
	tokens map[string]bool
	err    error
}

func (f *fakeRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	return f.tokens[token], f.err
}

func setupMiddlewareTest(revoked RevocationChecker) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	return gin.New(), NewAuthMiddleware(testJWTSecret, revoked)
}

func generateTestTokens(t *testing.T, userID uint, role model.UserRole) *util.TokenPair {
	tokens, err := util.GenerateTokenPair(userID, "test@example.com", string(role), testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func okHandler(c *gin.Context) {
	userID, _ := GetUserID(c)
	role, _ := GetUserRole(c)
	c.JSON(http.StatusOK, gin.H{"UserId": userID, "Role": role})
}

func serve(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	tokens := generateTestTokens(t, 7, model.RoleCustomer)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"valid bearer", "/test", "Bearer " + tokens.AccessToken, http.StatusOK, ""},
		{"query token for websocket", "/test?token=" + tokens.AccessToken, "", http.StatusOK, ""},
		{"missing token", "/test", "", http.StatusUnauthorized, "AUTH_UNAUTHORIZED"},
		{"bad scheme", "/test", "Basic abc", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"garbage token", "/test", "Bearer not-a-jwt", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"refresh token rejected", "/test", "Bearer " + tokens.RefreshToken, http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			router.GET("/test", auth.Authenticate(), okHandler)

			w := serve(router, tt.path, tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), tt.wantCode)
			} else {
				assert.Contains(t, w.Body.String(), `"UserId":7`)
			}
		})
	}
}

func TestAuthMiddleware_Authenticate_ExpiredToken(t *testing.T) {
	tokens, err := util.GenerateTokenPair(1, "a@example.com", "customer", testJWTSecret, -time.Minute, time.Hour)
	require.NoError(t, err)

	router, auth := setupMiddlewareTest(nil)
	router.GET("/test", auth.Authenticate(), okHandler)

	w := serve(router, "/test", "Bearer "+tokens.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_EXPIRED")
}

func TestAuthMiddleware_Authenticate_Revoked(t *testing.T) {
	tokens := generateTestTokens(t, 3, model.RoleCustomer)
	revocations := &fakeRevocations{tokens: map[string]bool{tokens.AccessToken: true}}

	router, auth := setupMiddlewareTest(revocations)
	router.GET("/test", auth.Authenticate(), okHandler)

	w := serve(router, "/test", "Bearer "+tokens.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_REVOKED")

	// a blacklist outage does not lock users out
	revocations.err = errors.New("redis down")
	revocations.tokens = nil
	w = serve(router, "/test", "Bearer "+tokens.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	tokens := generateTestTokens(t, 9, model.RoleCustomer)

	router, auth := setupMiddlewareTest(nil)
	router.GET("/test", auth.OptionalAuthenticate(), okHandler)

	w := serve(router, "/test", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"UserId":0`)

	w = serve(router, "/test", "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"UserId":0`)

	w = serve(router, "/test", "Bearer "+tokens.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"UserId":9`)
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       model.UserRole
		wantStatus int
	}{
		{"customer forbidden", model.RoleCustomer, http.StatusForbidden},
		{"staff allowed", model.RoleStaff, http.StatusOK},
		{"admin allowed", model.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(nil)
			router.GET("/admin", auth.Authenticate(), auth.RequireBackoffice(), okHandler)

			tokens := generateTestTokens(t, 1, tt.role)
			w := serve(router, "/admin", "Bearer "+tokens.AccessToken)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("admin only", func(t *testing.T) {
		router, auth := setupMiddlewareTest(nil)
		router.GET("/admin", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), okHandler)

		tokens := generateTestTokens(t, 1, model.RoleStaff)
		assert.Equal(t, http.StatusForbidden, serve(router, "/admin", "Bearer "+tokens.AccessToken).Code)
	})
}

func TestContextGetters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)
	_, ok = GetUserRole(c)
	assert.False(t, ok)

	c.Set(UserIDKey, uint(5))
	c.Set(UserEmailKey, "x@example.com")
	c.Set(UserRoleKey, model.RoleAdmin)
	c.Set(AccessTokenKey, "tok")

	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint(5), id)
	email, _ := GetUserEmail(c)
	assert.Equal(t, "x@example.com", email)
	role, _ := GetUserRole(c)
	assert.Equal(t, model.RoleAdmin, role)
	assert.Equal(t, "tok", GetAccessToken(c))
}
