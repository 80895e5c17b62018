package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey      = "user_id"
	UserEmailKey   = "user_email"
	UserRoleKey    = "user_role"
	AccessTokenKey = "access_token"
)

// RevocationChecker reports whether a still-valid token was logged out
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret string
	revoked   RevocationChecker
}

// NewAuthMiddleware builds the JWT middleware. revoked may be nil when no
// blacklist store is available.
func NewAuthMiddleware(jwtSecret string, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		revoked:   revoked,
	}
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter used by websocket clients
func bearerToken(c *gin.Context) (token string, malformed bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return c.Query("token"), false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", true
	}
	return parts[1], false
}

// verify validates the token and returns an error code and message on failure
func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.Claims, string, string) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		if err == util.ErrExpiredToken {
			return nil, errors.AuthTokenExpired, "Session expired, please log in again"
		}
		return nil, errors.AuthTokenInvalid, "Invalid authentication token"
	}
	if claims.TokenType != util.TokenTypeAccess {
		return nil, errors.AuthTokenInvalid, "Invalid authentication token"
	}
	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.Request.Context(), token)
		if err != nil {
			// blacklist outage should not lock every user out
			GetLoggerFromContext(c).Error("Failed to check token blacklist", err, nil)
		} else if revoked {
			return nil, errors.AuthTokenRevoked, "Session has been logged out"
		}
	}
	return claims, "", ""
}

func setClaims(c *gin.Context, token string, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(AccessTokenKey, token)
}

// Authenticate validates JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, malformed := bearerToken(c)
		if malformed {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Authorization header must be Bearer <token>")
			c.Abort()
			return
		}
		if token == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, code, msg := m.verify(c, token)
		if claims == nil {
			log.Warn("Token rejected", map[string]interface{}{
				"path": c.Request.URL.Path,
				"code": code,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, code, msg)
			c.Abort()
			return
		}

		setClaims(c, token, claims)
		log.Debug("User authenticated", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate sets user info when a valid token is present and
// otherwise continues as a guest
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, malformed := bearerToken(c)
		if malformed || token == "" {
			c.Next()
			return
		}

		claims, code, _ := m.verify(c, token)
		if claims == nil {
			GetLoggerFromContext(c).Debug("Token rejected - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
				"code": code,
			})
			c.Next()
			return
		}

		setClaims(c, token, claims)
		c.Next()
	}
}

// RequireRole checks if user has one of the given roles
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		role, exists := GetUserRole(c)
		if !exists {
			errors.Forbidden(c, "")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		userID, _ := GetUserID(c)
		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        userID,
			"user_role":      role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
		c.Abort()
	}
}

// RequireBackoffice admits staff and admins
func (m *AuthMiddleware) RequireBackoffice() gin.HandlerFunc {
	return m.RequireRole(model.RoleStaff, model.RoleAdmin)
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}

// GetAccessToken returns the raw bearer token of the current request
func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}
