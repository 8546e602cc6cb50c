// Package flash keeps one-shot notices between a redirect and the next rendered page.
//
// Messages travel in a signed cookie, so they survive the redirect without server-side state.
package flash

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie holding pending messages.
const CookieName = "myblog_flash"

// Categories used by the handlers; templates map them to alert styles.
const (
	Success = "success"
	Danger  = "danger"
	Info    = "info"
)

const (
	contextKey = "flash"
	lifetime   = 5 * time.Minute
)

// Message is one notice.
type Message struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// TokenCodec signs and verifies the cookie payload.
type TokenCodec interface {
	Sign(claims jwt.Claims) (string, error)
	Parse(token string, claims jwt.Claims) error
}

type flashClaims struct {
	Messages []Message `json:"msgs"`
	jwt.RegisteredClaims
}

// Store reads and writes the flash cookie.
type Store struct {
	codec  TokenCodec
	secure bool
	now    func() time.Time
}

// NewStore creates a store. secure sets the cookie's Secure attribute.
func NewStore(codec TokenCodec, secure bool) *Store {
	return &Store{codec: codec, secure: secure, now: time.Now}
}

type state struct {
	store   *Store
	pending []Message
}

// Middleware loads pending messages from the request cookie into the context.
// Add and Pop require it to have run.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := &state{store: s}
		if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
			var claims flashClaims
			if err := s.codec.Parse(raw, &claims); err != nil {
				slog.Debug("dropping flash cookie", "error", err, "remote_addr", c.ClientIP())
			} else {
				st.pending = claims.Messages
			}
		}
		c.Set(contextKey, st)
		c.Next()
	}
}

// Add queues a message for the next rendered page.
func Add(c *gin.Context, category, message string) {
	st := get(c)
	if st == nil {
		slog.Warn("flash store missing from context", "path", c.Request.URL.Path)
		return
	}
	st.pending = append(st.pending, Message{Category: category, Message: message})
	st.store.write(c, st.pending)
}

// Pop returns the pending messages and clears them.
func Pop(c *gin.Context) []Message {
	st := get(c)
	if st == nil || len(st.pending) == 0 {
		return nil
	}
	msgs := st.pending
	st.pending = nil
	st.store.clear(c)
	return msgs
}

func get(c *gin.Context) *state {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	st, _ := v.(*state)
	return st
}

func (s *Store) write(c *gin.Context, msgs []Message) {
	now := s.now()
	token, err := s.codec.Sign(&flashClaims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	})
	if err != nil {
		slog.Error("failed to sign flash cookie", "error", err)
		return
	}
	s.setCookie(c, token, int(lifetime.Seconds()))
}

func (s *Store) clear(c *gin.Context) {
	s.setCookie(c, "", -1)
}

func (s *Store) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
