package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"myblog/internal/platform/web"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFCookieName holds the per-browser token.
	CSRFCookieName = "myblog_csrf"
	// CSRFFormField is the hidden input every form posts back.
	CSRFFormField = "csrf_token"
	// CSRFHeader may carry the token instead of the form field.
	CSRFHeader = "X-CSRF-Token"

	csrfCookieMaxAge     = 24 * 60 * 60
	multipartMemoryLimit = 8 << 20
)

// CSRFConfig configures the CSRF cookie.
type CSRFConfig struct {
	CookieSecure bool
}

// CSRF implements the double-submit pattern: a random token lives in a cookie and must be
// echoed in the csrf_token form field (or X-CSRF-Token header) on every unsafe request.
// The token is exposed to templates under web.CSRFTokenKey.
func CSRF(cfg CSRFConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieToken, _ := c.Cookie(CSRFCookieName)

		if isSafeMethod(c.Request.Method) {
			if cookieToken == "" {
				token, err := generateCSRFToken()
				if err != nil {
					slog.Error("failed to generate csrf token", "error", err)
					web.Error(c, http.StatusInternalServerError)
					return
				}
				cookieToken = token
				setCSRFCookie(c, token, cfg.CookieSecure)
			}
			c.Set(web.CSRFTokenKey, cookieToken)
			c.Next()
			return
		}

		submitted := c.GetHeader(CSRFHeader)
		if submitted == "" {
			if err := parseForm(c.Request); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					web.Error(c, http.StatusRequestEntityTooLarge)
					return
				}
				slog.Warn("csrf: unreadable form", "error", err, "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
				web.Error(c, http.StatusBadRequest)
				return
			}
			submitted = c.Request.PostFormValue(CSRFFormField)
		}

		if cookieToken == "" || submitted == "" ||
			subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) != 1 {
			slog.Warn("csrf validation failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"remote_addr", c.ClientIP(),
			)
			web.Error(c, http.StatusBadRequest)
			return
		}

		c.Set(web.CSRFTokenKey, cookieToken)
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// parseForm parses url-encoded or multipart bodies so later binding reuses the result.
func parseForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return r.ParseMultipartForm(multipartMemoryLimit)
	}
	return r.ParseForm()
}

func setCSRFCookie(c *gin.Context, token string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
