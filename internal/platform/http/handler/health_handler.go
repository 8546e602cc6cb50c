// Package handler provides HTTP handlers for platform-level endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"myblog/internal/platform/web"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health handles the /healthz liveness endpoint.
func Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// SQLCheck pings the connection pool behind db.
func SQLCheck(db *gorm.DB) Check {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// RedisCheck pings rdb.
func RedisCheck(rdb redis.UniversalClient) Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// Readiness serves /readyz by running every registered check.
type Readiness struct {
	checks  map[string]Check
	timeout time.Duration
}

// NewReadiness builds a readiness handler. Each check gets at most timeout.
func NewReadiness(timeout time.Duration, checks map[string]Check) *Readiness {
	return &Readiness{checks: checks, timeout: timeout}
}

// Handle responds 200 when all checks pass and 503 otherwise.
func (r *Readiness) Handle(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), r.timeout)
		err := r.checks[name](ctx)
		cancel()
		if err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			results[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	c.JSON(status, gin.H{"status": overall, "checks": results})
}

// About renders the static about page.
func About(c *gin.Context) {
	web.HTML(c, http.StatusOK, "about", gin.H{"Title": "About"})
}
