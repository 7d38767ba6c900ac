package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-site/utils"
)

const FunctionKeyHeader = "X-Function-Key"

// RequireFunctionKey gates the notification functions behind a shared key,
// sent as X-Function-Key or as a bearer token. Preflight requests pass.
// With no key configured every invocation is refused.
func RequireFunctionKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if key == "" {
			utils.ErrorLogger.Errorf("function %s refused: FUNCTIONS_API_KEY is not set", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "functions are not configured"})
			return
		}

		given := c.GetHeader(FunctionKeyHeader)
		if given == "" {
			given = bearerToken(c)
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid function key"})
			return
		}
		c.Next()
	}
}
