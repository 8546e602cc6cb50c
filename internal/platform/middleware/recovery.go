package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"myblog/internal/platform/web"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the 500 page.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
			"stack", string(debug.Stack()),
		)
		if c.Writer.Written() {
			c.Abort()
			return
		}
		web.Error(c, http.StatusInternalServerError)
	})
}
