package middleware

import (
	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error codes written by middleware. They match the codes of the
// handler-level error envelope.
const (
	codeInternal    = "INTERNAL_SERVER_ERROR"
	codeRateLimited = "RATE_LIMITED"
)

// abortWithError stops the chain and writes the API error envelope:
// {"error":{"code","message","details","request_id"}}.
func abortWithError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	body := gin.H{
		"code":       code,
		"message":    message,
		"request_id": GetRequestID(c),
	}
	if len(details) > 0 {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// loggerFor prefers the request-scoped logger set by Logger.
func loggerFor(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	if requestLogger := GetLogger(c); requestLogger != nil {
		return requestLogger
	}
	return fallback
}
