package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const allowHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, x-client-info, apikey"

// CORSMiddlewares allows the site origin on the REST API.
func CORSMiddlewares(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// FunctionCORS sets the permissive headers used by the notification
// functions on every response, errors included.
func FunctionCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, x-function-key, apikey, content-type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		if c.Request.Method == "OPTIONS" {
			c.String(200, "ok")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORSByPath applies FunctionCORS under /functions/ and the site policy elsewhere.
func CORSByPath(origin string) gin.HandlerFunc {
	site := CORSMiddlewares(origin)
	functions := FunctionCORS()
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			functions(c)
			return
		}
		site(c)
	}
}
