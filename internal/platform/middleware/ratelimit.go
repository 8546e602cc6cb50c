package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"myblog/internal/platform/web"
	"myblog/internal/shared/ratelimiter"

	"github.com/gin-gonic/gin"
)

// RateLimit rejects requests over the client's budget with the 429 page and a Retry-After
// header. Clients are keyed by IP.
func RateLimit(l ratelimiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := l.Allow(c.ClientIP())
		if ok {
			c.Next()
			return
		}

		seconds := int(math.Ceil(retryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		slog.Warn("rate limit exceeded", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusTooManyRequests)
	}
}
