package middleware

import (
	"time"

	"github.com/bhandras/docchat/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey is the gin context key holding the per-request id.
const requestIDKey = "requestID"

// GetRequestID returns the request id assigned by LoggingMiddleware.
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(requestIDKey)
	s, _ := id.(string)
	return s
}

// LoggingMiddleware assigns a request id and logs HTTP requests
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		reqID := uuid.New().String()
		c.Set(requestIDKey, reqID)

		// Process request
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		// Log format: [id] [method] path?query - status (latency)
		if raw != "" {
			path = path + "?" + raw
		}

		logger.Infof("[%s] [%s] %s - %d (%v)", reqID, c.Request.Method, path, statusCode, latency)
	}
}
