package jwtmw

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "userID"
	ContextSessionID = "sessionID"
)

// FromCookie reads the login token from cookieName and, when it verifies, stores the user and
// session ids in the gin context. Requests without a valid token continue anonymously; routes
// that need a login enforce it further down the chain.
func FromCookie(cookieName string, s Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		claims, err := s.ParseSession(raw)
		if err != nil {
			slog.Debug("ignoring session cookie", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}

		uid, _ := claims.UserID()
		c.Set(ContextUserID, uid)
		c.Set(ContextSessionID, claims.SessionID)
		c.Next()
	}
}

// UserID returns the user id placed in the context by FromCookie.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// SessionID returns the session id placed in the context by FromCookie.
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
