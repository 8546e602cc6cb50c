// Package handler provides the HTTP handlers for registration, login and logout.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"myblog/internal/feature/auth/domain/entity"
	"myblog/internal/feature/auth/transport/middleware"
	"myblog/internal/feature/auth/usecase"
	"myblog/internal/platform/flash"
	jwtmw "myblog/internal/platform/jwt"
	"myblog/internal/platform/metrics"
	"myblog/internal/platform/web"
	"myblog/internal/shared/form"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed login token.
const SessionCookieName = "myblog_session"

const (
	msgRegistered  = "Your account has been created! You are now able to log in"
	msgLoginFailed = "Login Unsuccessful. Please check email and password"
)

// AuthUsecase defines the auth operations the handler needs. The consumer owns the interface.
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// Metrics records auth outcomes.
type Metrics interface {
	UserRegistered()
	LoginAttempt(result string)
}

// AuthHandler serves the register, login and logout pages.
type AuthHandler struct {
	auth         AuthUsecase
	metrics      Metrics
	cookieSecure bool
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth AuthUsecase, m Metrics, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: m, cookieSecure: cookieSecure}
}

// RegisterPage shows the sign-up form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}
	renderRegister(c, &form.RegisterForm{}, nil)
}

// Register creates an account and sends the visitor to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	var f form.RegisterForm
	if err := c.ShouldBind(&f); err != nil {
		slog.Warn("register bind failed", "error", err, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusBadRequest)
		return
	}
	if errs := form.Validate(&f); errs.Any() {
		renderRegister(c, &f, errs)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecase.RegisterInput{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Username:  f.Username,
		Email:     f.Email,
		Password:  f.Password,
	})
	if err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			renderRegister(c, &f, ve.Errors)
			return
		}
		slog.Error("register failed", "error", err, "username", f.Username, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusInternalServerError)
		return
	}

	h.metrics.UserRegistered()
	slog.Info("user registered", "user_id", user.ID, "username", user.Username, "remote_addr", c.ClientIP())
	flash.Add(c, flash.Success, msgRegistered)
	c.Redirect(http.StatusFound, "/login")
}

// LoginPage shows the sign-in form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}
	renderLogin(c, &form.LoginForm{}, nil)
}

// Login verifies the credentials, opens a session and redirects to next or home.
func (h *AuthHandler) Login(c *gin.Context) {
	if redirectIfLoggedIn(c) {
		return
	}

	var f form.LoginForm
	if err := c.ShouldBind(&f); err != nil {
		slog.Warn("login bind failed", "error", err, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusBadRequest)
		return
	}
	if errs := form.Validate(&f); errs.Any() {
		h.metrics.LoginAttempt(metrics.ResultInvalid)
		renderLogin(c, &f, errs)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Username:  f.Username,
		Password:  f.Password,
		Remember:  f.Remember,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			h.metrics.LoginAttempt(metrics.ResultFailure)
			slog.Warn("login failed", "error", err, "username", f.Username, "remote_addr", c.ClientIP())
			flash.Add(c, flash.Danger, msgLoginFailed)
			renderLogin(c, &f, nil)
			return
		}
		slog.Error("login error", "error", err, "username", f.Username, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusInternalServerError)
		return
	}

	maxAge := 0
	if res.Persistent {
		maxAge = int(time.Until(res.ExpiresAt).Seconds())
	}
	h.setSessionCookie(c, res.Token, maxAge)

	h.metrics.LoginAttempt(metrics.ResultSuccess)
	slog.Info("user logged in", "user_id", res.User.ID, "remember", res.Persistent, "remote_addr", c.ClientIP())

	target := SafeNext(c.Query("next"))
	if target == "" {
		target = "/"
	}
	c.Redirect(http.StatusFound, target)
}

// Logout revokes the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sid, ok := jwtmw.SessionID(c); ok {
		if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
			slog.Error("logout failed", "error", err, "remote_addr", c.ClientIP())
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/")
}

// SafeNext returns next when it is a path on this site, otherwise "".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return ""
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	for i := 0; i < len(next); i++ {
		// Browsers drop tabs and newlines from URLs, so "/\t/host" would turn into "//host".
		if next[i] < 0x20 || next[i] == 0x7f {
			return ""
		}
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   h.cookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func redirectIfLoggedIn(c *gin.Context) bool {
	if _, ok := middleware.CurrentUser(c); ok {
		c.Redirect(http.StatusFound, "/")
		return true
	}
	return false
}

func renderRegister(c *gin.Context, f *form.RegisterForm, errs form.Errors) {
	web.HTML(c, http.StatusOK, "register", gin.H{"Title": "Register", "Form": f, "Errors": errs})
}

func renderLogin(c *gin.Context, f *form.LoginForm, errs form.Errors) {
	web.HTML(c, http.StatusOK, "login", gin.H{
		"Title":  "Login",
		"Form":   f,
		"Errors": errs,
		"Next":   SafeNext(c.Query("next")),
	})
}
