package middleware

import (
	"net"
	"sort"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/gin-gonic/gin"
)

// LoggerKey is the gin context key holding the request-scoped logger.
const LoggerKey = "logger"

// unmatchedRoute is logged for requests that hit no registered route.
const unmatchedRoute = "unmatched"

// Logger attaches a request-scoped logger and writes one line per
// request. Requests carry customer addresses and contact details, so the
// line holds only the route template, the names of query parameters and
// the client's network (IPv4 /24, IPv6 /48). Routes guarded by RateLimit
// also log the limiter and the hits left in the window.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(LoggerKey, requestLogger)

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"route":       routeOf(c),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
			"client_net":  maskIP(c.ClientIP()),
		}
		if keys := queryKeys(c); len(keys) > 0 {
			fields["query_keys"] = keys
		}
		if state, ok := GetRateLimit(c); ok {
			fields["rate_limiter"] = state.Name
			fields["rate_remaining"] = state.Remaining
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			requestLogger.Error("Request failed", nil, fields)
		case status >= 400:
			requestLogger.Warn("Request rejected", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger returns the request-scoped logger, or nil outside Logger.
func GetLogger(c *gin.Context) *logger.Logger {
	if value, exists := c.Get(LoggerKey); exists {
		if requestLogger, ok := value.(*logger.Logger); ok {
			return requestLogger
		}
	}
	return nil
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

func queryKeys(c *gin.Context) []string {
	query := c.Request.URL.Query()
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// maskIP reduces a client address to its network.
func maskIP(raw string) string {
	ip := net.ParseIP(raw)
	if ip == nil {
		return "unknown"
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String() + "/24"
	}
	return ip.Mask(net.CIDRMask(48, 128)).String() + "/48"
}
