package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func runFromCookie(t *testing.T, s Signer, cookie *http.Cookie) *gin.Context {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		c.Request.AddCookie(cookie)
	}

	FromCookie("session", s)(c)
	return c
}

func TestFromCookie_ValidToken(t *testing.T) {
	s := NewSigner("test-secret")
	tok, err := s.SignSession(7, "sid-7", time.Now().Add(time.Hour))
	require.NoError(t, err)

	c := runFromCookie(t, s, &http.Cookie{Name: "session", Value: tok})

	uid, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint(7), uid)

	sid, ok := SessionID(c)
	assert.True(t, ok)
	assert.Equal(t, "sid-7", sid)
	assert.False(t, c.IsAborted())
}

func TestFromCookie_AnonymousRequests(t *testing.T) {
	s := NewSigner("test-secret")

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: "session", Value: ""}},
		{"tampered cookie", &http.Cookie{Name: "session", Value: "a.b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := runFromCookie(t, s, tt.cookie)

			_, ok := UserID(c)
			assert.False(t, ok)
			_, ok = SessionID(c)
			assert.False(t, ok)
			assert.False(t, c.IsAborted())
		})
	}
}
