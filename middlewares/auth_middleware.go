package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/utils"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextToken  = "token"
	ContextAdmin  = "is_admin"
)

// TokenAuthenticator validates an access token.
type TokenAuthenticator interface {
	Authenticate(token string) (*utils.CustomClaims, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func setClaims(c *gin.Context, token string, claims *utils.CustomClaims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextToken, token)
}

// RequireAuth rejects requests without a valid access token.
func RequireAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			return
		}

		claims, err := auth.Authenticate(token)
		if err != nil || claims.UserID == 0 {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			return
		}

		setClaims(c, token, claims)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := auth.Authenticate(token); err == nil && claims.UserID != 0 {
				setClaims(c, token, claims)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
