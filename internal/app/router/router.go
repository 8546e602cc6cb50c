package router

import (
	"log/slog"
	"net/http"

	authhandler "myblog/internal/feature/auth/transport/handler"
	authmw "myblog/internal/feature/auth/transport/middleware"
	contacthandler "myblog/internal/feature/contact/transport/handler"
	posthandler "myblog/internal/feature/posts/transport/handler"
	profilehandler "myblog/internal/feature/profile/transport/handler"
	"myblog/internal/platform/flash"
	"myblog/internal/platform/http/handler"
	jwtmw "myblog/internal/platform/jwt"
	"myblog/internal/platform/metrics"
	"myblog/internal/platform/middleware"
	"myblog/internal/platform/web"
	"myblog/internal/shared/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Posts     *posthandler.PostHandler
	Profile   *profilehandler.ProfileHandler
	Contact   *contacthandler.ContactHandler
	Readiness *handler.Readiness
}

// Options carries the cross-cutting pieces of the middleware chain.
type Options struct {
	Logger        *slog.Logger
	Signer        jwtmw.Signer
	Authenticator authmw.Authenticator
	Flash         *flash.Store
	Metrics       *metrics.Collector
	Gatherer      prometheus.Gatherer
	StaticDir     string
	MaxBodyBytes  int64
	CookieSecure  bool
	// LoginLimiter and ContactLimiter throttle the form submissions; nil disables them.
	LoginLimiter   ratelimiter.Limiter
	ContactLimiter ratelimiter.Limiter
}

func NewRouter(h Handlers, opt Options) *gin.Engine {
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.HTMLRender = web.MustNewRenderer()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(),
		middleware.SecurityHeaders(),
	)
	if opt.Metrics != nil {
		r.Use(opt.Metrics.Middleware())
	}

	// Operational endpoints skip the page middleware.
	r.Match([]string{http.MethodGet, http.MethodHead, http.MethodOptions}, "/healthz", handler.Health)
	if h.Readiness != nil {
		r.GET("/readyz", h.Readiness.Handle)
	}
	if opt.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(opt.Gatherer)))
	}
	r.Static("/static", opt.StaticDir)

	r.NoRoute(func(c *gin.Context) {
		web.Error(c, http.StatusNotFound)
	})

	// Pages share flash, CSRF and login-state handling.
	site := r.Group("/")
	site.Use(
		middleware.BodyLimit(opt.MaxBodyBytes),
		opt.Flash.Middleware(),
		middleware.CSRF(middleware.CSRFConfig{CookieSecure: opt.CookieSecure}),
		jwtmw.FromCookie(authhandler.SessionCookieName, opt.Signer),
		authmw.LoadCurrentUser(opt.Authenticator),
	)

	// Public pages.
	site.GET("/", h.Posts.Home)
	site.GET("/home", h.Posts.Home)
	site.GET("/about", handler.About)
	site.GET("/user/:username", h.Posts.UserPosts)

	site.GET("/register", h.Auth.RegisterPage)
	site.POST("/register", h.Auth.Register)
	site.GET("/login", h.Auth.LoginPage)
	site.POST("/login", limited(opt.LoginLimiter, h.Auth.Login)...)
	site.GET("/logout", h.Auth.Logout)

	site.GET("/contactus", h.Contact.ContactPage)
	site.POST("/contactus", limited(opt.ContactLimiter, h.Contact.Contact)...)

	// Login required.
	auth := site.Group("/")
	auth.Use(authmw.LoginRequired())
	{
		auth.GET("/myprofile", h.Profile.MyProfile)
		auth.GET("/editprofile", h.Profile.EditProfilePage)
		auth.POST("/editprofile", h.Profile.EditProfile)

		auth.GET("/post/new", h.Posts.NewPostPage)
		auth.POST("/post/new", h.Posts.NewPost)
		auth.GET("/post/:id/update", h.Posts.UpdatePostPage)
		auth.POST("/post/:id/update", h.Posts.UpdatePost)
		auth.GET("/post/:id/delete", h.Posts.DeletePostPage)
		auth.POST("/post/:id/delete", h.Posts.DeletePost)
	}

	return r
}

func limited(l ratelimiter.Limiter, h gin.HandlerFunc) []gin.HandlerFunc {
	if l == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{middleware.RateLimit(l), h}
}
