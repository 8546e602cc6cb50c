// Package middleware resolves the logged-in user for each request and guards routes that
// need one.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"myblog/internal/feature/auth/domain/entity"
	"myblog/internal/feature/auth/usecase"
	"myblog/internal/platform/flash"
	jwtmw "myblog/internal/platform/jwt"
	"myblog/internal/platform/web"

	"github.com/gin-gonic/gin"
)

// LoginMessage is flashed when an anonymous visitor hits a protected route.
const LoginMessage = "Please log in to access this page."

// Authenticator resolves a verified cookie to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, userID uint, sessionID string) (*entity.User, error)
}

// LoadCurrentUser looks up the user behind the ids left by jwtmw.FromCookie. A missing, revoked
// or expired session leaves the request anonymous.
func LoadCurrentUser(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := jwtmw.UserID(c)
		sid, ok2 := jwtmw.SessionID(c)
		if !ok || !ok2 {
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), uid, sid)
		switch {
		case err == nil:
			c.Set(web.CurrentUserKey, user)
		case errors.Is(err, usecase.ErrSessionNotFound),
			errors.Is(err, usecase.ErrSessionRevoked),
			errors.Is(err, usecase.ErrSessionExpired),
			errors.Is(err, usecase.ErrUserNotFound):
			slog.Debug("session rejected", "error", err, "user_id", uid, "remote_addr", c.ClientIP())
		default:
			slog.Error("failed to load session", "error", err, "user_id", uid, "remote_addr", c.ClientIP())
		}
		c.Next()
	}
}

// CurrentUser returns the logged-in user, if any.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(web.CurrentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

// LoginRequired redirects anonymous visitors to the login page, remembering where they were
// going.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		flash.Add(c, flash.Info, LoginMessage)
		c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
		c.Abort()
	}
}
