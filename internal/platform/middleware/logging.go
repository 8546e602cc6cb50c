package middleware

import (
	"log/slog"
	"time"

	jwtmw "myblog/internal/platform/jwt"

	"github.com/gin-gonic/gin"
)

// Logger writes one structured line per request. 5xx responses log at error level and
// 4xx at warn.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000,
			"request_id", GetRequestID(c),
			"remote_addr", c.ClientIP(),
		}
		if uid, ok := jwtmw.UserID(c); ok {
			args = append(args, "user_id", uid)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "http_request", args...)
	}
}
