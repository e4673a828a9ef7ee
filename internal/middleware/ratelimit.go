package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"github.com/gin-gonic/gin"
)

// Headers set by RateLimit.
const (
	RetryAfterHeader         = "Retry-After"
	RateLimitLimitHeader     = "X-RateLimit-Limit"
	RateLimitRemainingHeader = "X-RateLimit-Remaining"
)

const rateLimitKey = "rate_limit"

// RateLimitCounter counts hits in fixed windows. Increment returns the
// number of hits recorded for key in the current window, including this
// one, and the time left until the window resets.
type RateLimitCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RateLimitState is the limiter's decision for the current request.
type RateLimitState struct {
	Name      string
	Limit     int
	Remaining int
}

// RateLimit rejects clients that exceed limit requests per window on the
// routes it guards. Keys are scoped by name and client IP.
// Counter failures are logged and the request is let through without a
// recorded state.
func RateLimit(name string, counter RateLimitCounter, limit int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + name + ":" + c.ClientIP()

		count, resetIn, err := counter.Increment(c.Request.Context(), key, window)
		if err != nil {
			loggerFor(c, log).Warn("Rate limit counter unavailable, allowing request", map[string]interface{}{
				"limiter": name,
				"error":   err.Error(),
			})
			c.Next()
			return
		}

		remaining := limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Set(rateLimitKey, RateLimitState{Name: name, Limit: limit, Remaining: remaining})
		c.Header(RateLimitLimitHeader, strconv.Itoa(limit))
		c.Header(RateLimitRemainingHeader, strconv.Itoa(remaining))

		if count > int64(limit) {
			retryAfter := int(math.Ceil(resetIn.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header(RetryAfterHeader, strconv.Itoa(retryAfter))
			abortWithError(c, http.StatusTooManyRequests, codeRateLimited,
				"Too many requests, please try again later",
				map[string]interface{}{"retry_after_seconds": retryAfter})
			return
		}

		c.Next()
	}
}

// GetRateLimit returns the state RateLimit recorded for this request.
func GetRateLimit(c *gin.Context) (RateLimitState, bool) {
	value, exists := c.Get(rateLimitKey)
	if !exists {
		return RateLimitState{}, false
	}
	state, ok := value.(RateLimitState)
	return state, ok
}
