package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-site/utils"
)

func requestFields(c *gin.Context) logrus.Fields {
	path := c.Request.URL.Path
	if q := c.Request.URL.RawQuery; q != "" {
		path += "?" + q
	}
	fields := logrus.Fields{
		"method": c.Request.Method,
		"path":   path,
		"ip":     c.ClientIP(),
	}
	if id, ok := CurrentUserID(c); ok {
		fields["user_id"] = id
	}
	return fields
}

// LoggerMiddleware writes one entry per request, at error level for 5xx.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := requestFields(c)
		fields["status"] = c.Writer.Status()
		fields["latency"] = time.Since(start).String()

		if c.Writer.Status() >= http.StatusInternalServerError {
			utils.ErrorLogger.WithFields(fields).Errorf("request failed: %s", c.Errors.String())
			return
		}
		utils.InfoLogger.WithFields(fields).Info("request")
	}
}

// AuditLogger records admin mutations with the acting user.
func AuditLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method == http.MethodGet {
			return
		}

		entry := utils.InfoLogger.WithFields(requestFields(c)).WithField("route", c.FullPath())
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			utils.ErrorLogger.WithFields(entry.Data).Errorf("admin action rejected with %d", status)
			return
		}
		entry.Info("admin action")
	}
}
