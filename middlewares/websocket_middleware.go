package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WebSocketAuth authenticates the upgrade request. Browsers cannot set
// headers on the handshake, so ?token= is read first and the bearer header
// is the fallback for non-browser clients.
func WebSocketAuth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			raw = bearerToken(c)
		}
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := auth.Authenticate(raw)
		if err != nil || claims.UserID == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		setClaims(c, raw, claims)
		c.Next()
	}
}
