package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"myblog/internal/feature/auth/domain/entity"
	"myblog/internal/feature/auth/usecase"
	"myblog/internal/platform/flash"
	jwtmw "myblog/internal/platform/jwt"
	"myblog/internal/platform/web"
	"myblog/internal/shared/form"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAuthUsecase is a function-field mock of AuthUsecase.
type mockAuthUsecase struct {
	RegisterFunc func(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	LoginFunc    func(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error)
	LogoutFunc   func(ctx context.Context, sessionID string) error
}

func (m *mockAuthUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, in)
	}
	return &entity.User{ID: 1, Username: in.Username}, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, in)
	}
	return nil, usecase.ErrInvalidCredentials
}

func (m *mockAuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

type recordingMetrics struct {
	registered int
	logins     []string
}

func (m *recordingMetrics) UserRegistered()            { m.registered++ }
func (m *recordingMetrics) LoginAttempt(result string) { m.logins = append(m.logins, result) }

func newRouter(h *AuthHandler, user *entity.User, sid string) *gin.Engine {
	r := gin.New()
	r.HTMLRender = web.MustNewRenderer()
	r.Use(flash.NewStore(jwtmw.NewSigner("secret"), false).Middleware())
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(web.CurrentUserKey, user)
		}
		if sid != "" {
			c.Set(jwtmw.ContextSessionID, sid)
		}
		c.Next()
	})
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	return r
}

func postForm(r http.Handler, target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func validRegistration() url.Values {
	return url.Values{
		"firstname":        {"Ada"},
		"lastname":         {"Lovelace"},
		"username":         {"ada"},
		"email":            {"ada@example.com"},
		"password":         {"secret"},
		"confirm_password": {"secret"},
	}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("success redirects to login with flash", func(t *testing.T) {
		m := &recordingMetrics{}
		var got usecase.RegisterInput
		uc := &mockAuthUsecase{RegisterFunc: func(_ context.Context, in usecase.RegisterInput) (*entity.User, error) {
			got = in
			return &entity.User{ID: 1, Username: in.Username}, nil
		}}

		w := postForm(newRouter(NewAuthHandler(uc, m, false), nil, ""), "/register", validRegistration())

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.NotNil(t, cookie(w, flash.CookieName))
		assert.Equal(t, "ada", got.Username)
		assert.Equal(t, "secret", got.Password)
		assert.Equal(t, 1, m.registered)
	})

	t.Run("syntactic errors re-render without calling usecase", func(t *testing.T) {
		called := false
		uc := &mockAuthUsecase{RegisterFunc: func(context.Context, usecase.RegisterInput) (*entity.User, error) {
			called = true
			return nil, nil
		}}
		values := validRegistration()
		values.Set("username", "a")
		values.Set("confirm_password", "other")

		w := postForm(newRouter(NewAuthHandler(uc, &recordingMetrics{}, false), nil, ""), "/register", values)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Field must be between 2 and 20 characters long.")
		assert.Contains(t, w.Body.String(), "Field must be equal to password.")
		assert.False(t, called)
	})

	t.Run("taken username is reported on the field", func(t *testing.T) {
		uc := &mockAuthUsecase{RegisterFunc: func(context.Context, usecase.RegisterInput) (*entity.User, error) {
			errs := form.Errors{}
			errs.Add("username", "That username is taken. Please choose a different one.")
			return nil, &form.ValidationError{Errors: errs}
		}}
		m := &recordingMetrics{}

		w := postForm(newRouter(NewAuthHandler(uc, m, false), nil, ""), "/register", validRegistration())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "That username is taken. Please choose a different one.")
		assert.Zero(t, m.registered)
	})

	t.Run("storage failure renders 500", func(t *testing.T) {
		uc := &mockAuthUsecase{RegisterFunc: func(context.Context, usecase.RegisterInput) (*entity.User, error) {
			return nil, errors.New("db down")
		}}

		w := postForm(newRouter(NewAuthHandler(uc, &recordingMetrics{}, false), nil, ""), "/register", validRegistration())
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	success := func(_ context.Context, in usecase.LoginInput) (*usecase.LoginResult, error) {
		return &usecase.LoginResult{
			User:       &entity.User{ID: 1, Username: in.Username},
			SessionID:  "sid",
			Token:      "signed-token",
			ExpiresAt:  time.Now().Add(720 * time.Hour),
			Persistent: in.Remember,
		}, nil
	}

	tests := []struct {
		name         string
		target       string
		values       url.Values
		loginFunc    func(context.Context, usecase.LoginInput) (*usecase.LoginResult, error)
		wantStatus   int
		wantLocation string
		wantCookie   bool
		wantMaxAge   bool
		wantBody     string
		wantMetric   string
	}{
		{
			name:         "success without remember sets a browser-session cookie",
			target:       "/login",
			values:       url.Values{"username": {"ada"}, "password": {"secret"}},
			loginFunc:    success,
			wantStatus:   http.StatusFound,
			wantLocation: "/",
			wantCookie:   true,
			wantMetric:   "success",
		},
		{
			name:         "remember me persists the cookie",
			target:       "/login",
			values:       url.Values{"username": {"ada"}, "password": {"secret"}, "remember": {"true"}},
			loginFunc:    success,
			wantStatus:   http.StatusFound,
			wantLocation: "/",
			wantCookie:   true,
			wantMaxAge:   true,
			wantMetric:   "success",
		},
		{
			name:         "safe next is followed",
			target:       "/login?next=%2Fpost%2Fnew",
			values:       url.Values{"username": {"ada"}, "password": {"secret"}},
			loginFunc:    success,
			wantStatus:   http.StatusFound,
			wantLocation: "/post/new",
			wantCookie:   true,
			wantMetric:   "success",
		},
		{
			name:         "external next is ignored",
			target:       "/login?next=%2F%2Fevil.example.com",
			values:       url.Values{"username": {"ada"}, "password": {"secret"}},
			loginFunc:    success,
			wantStatus:   http.StatusFound,
			wantLocation: "/",
			wantCookie:   true,
			wantMetric:   "success",
		},
		{
			name:         "next with an embedded tab is ignored",
			target:       "/login?next=%2F%09%2Fevil.example.com",
			values:       url.Values{"username": {"ada"}, "password": {"secret"}},
			loginFunc:    success,
			wantStatus:   http.StatusFound,
			wantLocation: "/",
			wantCookie:   true,
			wantMetric:   "success",
		},
		{
			name:       "bad credentials flash and re-render",
			target:     "/login",
			values:     url.Values{"username": {"ada"}, "password": {"wrong"}},
			wantStatus: http.StatusOK,
			wantBody:   "Login Unsuccessful. Please check email and password",
			wantMetric: "failure",
		},
		{
			name:       "missing password is a field error",
			target:     "/login",
			values:     url.Values{"username": {"ada"}},
			wantStatus: http.StatusOK,
			wantBody:   "This field is required.",
			wantMetric: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &recordingMetrics{}
			uc := &mockAuthUsecase{LoginFunc: tt.loginFunc}

			w := postForm(newRouter(NewAuthHandler(uc, m, false), nil, ""), tt.target, tt.values)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}

			ck := cookie(w, SessionCookieName)
			if !tt.wantCookie {
				assert.Nil(t, ck)
			} else {
				require.NotNil(t, ck)
				assert.Equal(t, "signed-token", ck.Value)
				assert.True(t, ck.HttpOnly)
				assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
				if tt.wantMaxAge {
					assert.Positive(t, ck.MaxAge)
				} else {
					assert.Zero(t, ck.MaxAge)
				}
			}
			assert.Equal(t, []string{tt.wantMetric}, m.logins)
		})
	}
}

func TestAuthHandler_Login_PassesClientMetadata(t *testing.T) {
	var got usecase.LoginInput
	uc := &mockAuthUsecase{LoginFunc: func(_ context.Context, in usecase.LoginInput) (*usecase.LoginResult, error) {
		got = in
		return nil, usecase.ErrInvalidCredentials
	}}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=ada&password=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	newRouter(NewAuthHandler(uc, &recordingMetrics{}, false), nil, "").ServeHTTP(w, req)

	assert.Equal(t, "test-agent", got.UserAgent)
	assert.NotEmpty(t, got.IPAddress)
}

func TestAuthHandler_LoggedInUsersAreRedirected(t *testing.T) {
	user := &entity.User{ID: 1, Username: "ada"}
	r := newRouter(NewAuthHandler(&mockAuthUsecase{}, &recordingMetrics{}, false), user, "")

	for _, path := range []string{"/login", "/register"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/", w.Header().Get("Location"), path)
	}
}

func TestAuthHandler_Pages(t *testing.T) {
	r := newRouter(NewAuthHandler(&mockAuthUsecase{}, &recordingMetrics{}, false), nil, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?next=%2Fmyprofile", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "myblog - Login")
	assert.Contains(t, w.Body.String(), `action="/login?next=%2fmyprofile"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/register", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Join Today")
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	uc := &mockAuthUsecase{LogoutFunc: func(_ context.Context, sid string) error {
		revoked = sid
		return nil
	}}
	r := newRouter(NewAuthHandler(uc, &recordingMetrics{}, false), &entity.User{ID: 1}, "sid-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, "sid-1", revoked)

	ck := cookie(w, SessionCookieName)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.Negative(t, ck.MaxAge)
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/myprofile", "/myprofile"},
		{"/user/ada?page=2", "/user/ada?page=2"},
		{"//evil.example.com", ""},
		{"/\\evil.example.com", ""},
		{"https://evil.example.com", ""},
		{"myprofile", ""},
		{"/x\r\nSet-Cookie: a=b", ""},
		{"/\t/evil.example", ""},
		{"/\n/evil.example", ""},
		{"/x\x00y", ""},
		{"/x\x7fy", ""},
		{"/myprofile?tab=posts#top", "/myprofile?tab=posts#top"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeNext(tt.in), tt.in)
	}
}
