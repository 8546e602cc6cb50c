// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"myblog/internal/app/router"
	"myblog/internal/config"
	authadapters "myblog/internal/feature/auth/adapters"
	authhandler "myblog/internal/feature/auth/transport/handler"
	authusecase "myblog/internal/feature/auth/usecase"
	"myblog/internal/feature/contact/adapters/mailer"
	contacthandler "myblog/internal/feature/contact/transport/handler"
	contactusecase "myblog/internal/feature/contact/usecase"
	postadapters "myblog/internal/feature/posts/adapters"
	posthandler "myblog/internal/feature/posts/transport/handler"
	postusecase "myblog/internal/feature/posts/usecase"
	"myblog/internal/feature/profile/adapters/avatar"
	"myblog/internal/feature/profile/adapters/vision"
	profilehandler "myblog/internal/feature/profile/transport/handler"
	profileusecase "myblog/internal/feature/profile/usecase"
	"myblog/internal/platform/flash"
	"myblog/internal/platform/http/handler"
	jwtmw "myblog/internal/platform/jwt"
	"myblog/internal/platform/metrics"
	"myblog/internal/shared/ratelimiter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	readinessTimeout = 2 * time.Second
	mailTimeout      = 10 * time.Second
)

// App is the assembled HTTP application.
type App struct {
	Engine *gin.Engine

	closers []func() error
}

// Close releases clients opened by NewApp. The database and Redis handles belong to the caller.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewApp builds every repository, usecase and handler and mounts them on a router.
// rdb may be nil, in which case sessions are kept in the database.
func NewApp(ctx context.Context, cfg *config.Config, gdb *gorm.DB, rdb *redis.Client) (*App, error) {
	app := &App{}

	signer := jwtmw.NewSigner(cfg.SecretKey)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(reg)

	// Repository
	userRepo := authadapters.NewUserGorm(gdb)
	sessionRepo := NewSessionRepository(rdb, gdb)
	postRepo := postadapters.NewPostGorm(gdb)

	avatars, err := avatar.NewLocalStore(filepath.Join(cfg.Server.StaticDir, "profile_pics"))
	if err != nil {
		return nil, err
	}

	var moderator profileusecase.ImageModerator
	if cfg.Upload.VisionModeration {
		mod, err := vision.NewSafeSearchModerator(ctx)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, mod.Close)
		moderator = mod
	}

	mail, err := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.Mail.Server,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		UseTLS:   cfg.Mail.UseTLS,
		Suppress: cfg.Mail.SuppressSend,
		Timeout:  mailTimeout,
	})
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}
	if !cfg.MailEnabled() {
		slog.Warn("mail delivery disabled; contact messages will only be logged")
	}

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, signer, authusecase.SessionPolicy{
		TTL:         cfg.Session.TTL,
		RememberTTL: cfg.Session.RememberTTL,
	})
	postUC := postusecase.NewPostUsecase(postRepo, userRepo, nil)
	profileUC := profileusecase.NewProfileUsecase(userRepo, avatars, moderator)
	contactUC := contactusecase.NewContactUsecase(mail, cfg.Mail.Recipient)

	// Handler
	checks := map[string]handler.Check{"database": handler.SQLCheck(gdb)}
	if rdb != nil {
		checks["redis"] = handler.RedisCheck(rdb)
	}
	handlers := router.Handlers{
		Auth:      authhandler.NewAuthHandler(authUC, m, cfg.Server.CookieSecure),
		Posts:     posthandler.NewPostHandler(postUC, m),
		Profile:   profilehandler.NewProfileHandler(profileUC),
		Contact:   contacthandler.NewContactHandler(contactUC, m),
		Readiness: handler.NewReadiness(readinessTimeout, checks),
	}

	app.Engine = router.NewRouter(handlers, router.Options{
		Logger:         slog.Default(),
		Signer:         signer,
		Authenticator:  authUC,
		Flash:          flash.NewStore(signer, cfg.Server.CookieSecure),
		Metrics:        m,
		Gatherer:       reg,
		StaticDir:      cfg.Server.StaticDir,
		MaxBodyBytes:   cfg.Upload.MaxBytes,
		CookieSecure:   cfg.Server.CookieSecure,
		LoginLimiter:   ratelimiter.NewPerMinute(cfg.RateLimit.LoginPerMinute),
		ContactLimiter: ratelimiter.NewPerMinute(cfg.RateLimit.ContactPerMinute),
	})
	return app, nil
}
