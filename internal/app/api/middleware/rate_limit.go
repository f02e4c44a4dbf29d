package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PugTools/divinatory-agenda/internal/app/service/ratelimit"
	"github.com/PugTools/divinatory-agenda/pkg/logctx"
	"github.com/PugTools/divinatory-agenda/pkg/metrics"
)

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then
// "unknown".
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimitMiddleware rejects a client once it exceeds limit on the named
// route. Limiter errors let the request through.
func RateLimitMiddleware(name string, limiter ratelimit.Limiter, limit ratelimit.Limit, m *metrics.Business, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + ":" + ClientIP(c)
		d, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			logctx.FromGin(c, base).Warnw("rate limiter unavailable, allowing request", "route", name, "err", err)
			c.Next()
			return
		}
		if d.Allowed {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			c.Next()
			return
		}

		m.RateLimited(name)
		retry := int(math.Ceil(d.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":    false,
			"error":      "too many requests, retry later",
			"code":       "RATE_LIMITED",
			"retryAfter": retry,
		})
	}
}
