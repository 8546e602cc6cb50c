package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"myblog/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the username is unknown, so both failure paths cost
// one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository abstracts the persistence of users.
type UserRepository interface {
	UserLookup

	// Create returns ErrUserAlreadyExists when the username or email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByID returns ErrUserNotFound when the id is unknown.
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenSigner signs the login cookie.
type TokenSigner interface {
	SignSession(userID uint, sessionID string, expiresAt time.Time) (string, error)
}

// SessionPolicy controls session lifetime.
type SessionPolicy struct {
	// TTL applies to ordinary logins; the cookie lives until the browser closes.
	TTL time.Duration
	// RememberTTL applies when "remember me" is checked; the cookie persists.
	RememberTTL time.Duration
	// MaxPerUser caps concurrent sessions; the oldest is evicted first.
	MaxPerUser int
}

// DefaultMaxSessionsPerUser is used when SessionPolicy.MaxPerUser is not set.
const DefaultMaxSessionsPerUser = 5

// RegisterInput is a validated sign-up form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// LoginInput is a validated sign-in form plus client metadata.
type LoginInput struct {
	Username  string
	Password  string
	Remember  bool
	UserAgent string
	IPAddress string
}

// LoginResult is what the transport layer needs to set the cookie.
type LoginResult struct {
	User      *entity.User
	SessionID string
	Token     string
	ExpiresAt time.Time
	// Persistent is true when the cookie should outlive the browser session.
	Persistent bool
}

type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	signer   TokenSigner
	policy   SessionPolicy
	hashCost int
	now      func() time.Time
}

// NewAuthUsecase creates the auth usecase.
func NewAuthUsecase(users UserRepository, sessions SessionRepository, signer TokenSigner, policy SessionPolicy) *authUsecase {
	if policy.MaxPerUser <= 0 {
		policy.MaxPerUser = DefaultMaxSessionsPerUser
	}
	return &authUsecase{
		users:    users,
		sessions: sessions,
		signer:   signer,
		policy:   policy,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register creates a user with a bcrypt-hashed password. Username or email collisions come back
// as *form.ValidationError.
func (u *authUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := CheckIdentityAvailable(ctx, u.users, in.Username, in.Email, nil); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Username:   in.Username,
		Email:      in.Email,
		Password:   string(hashed),
		ProfilePic: entity.DefaultProfilePic,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			// Lost a race with a concurrent sign-up; report which field collided.
			if verr := CheckIdentityAvailable(ctx, u.users, in.Username, in.Email, nil); verr != nil {
				return nil, verr
			}
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and opens a new session.
func (u *authUsecase) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, findErr := u.users.FindByUsername(ctx, in.Username)
	if findErr != nil && !errors.Is(findErr, ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", findErr)
	}

	passwordHash := dummyHash
	if findErr == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(in.Password))
	if findErr != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	now := u.now()
	if n, err := u.sessions.DeleteExpired(ctx); err != nil {
		slog.Warn("failed to delete expired sessions", "error", err)
	} else if n > 0 {
		slog.Debug("deleted expired sessions", "count", n)
	}

	if err := u.enforceSessionLimit(ctx, user.ID); err != nil {
		return nil, err
	}

	ttl := u.policy.TTL
	if in.Remember {
		ttl = u.policy.RememberTTL
	}

	sid, err := newSessionID()
	if err != nil {
		return nil, err
	}
	session := &entity.Session{
		ID:        sid,
		UserID:    user.ID,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := u.signer.SignSession(user.ID, sid, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &LoginResult{
		User:       user,
		SessionID:  sid,
		Token:      token,
		ExpiresAt:  session.ExpiresAt,
		Persistent: in.Remember,
	}, nil
}

func (u *authUsecase) enforceSessionLimit(ctx context.Context, userID uint) error {
	count, err := u.sessions.CountByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}
	for ; count >= int64(u.policy.MaxPerUser); count-- {
		if err := u.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
			return fmt.Errorf("evict oldest session: %w", err)
		}
	}
	return nil
}

// Logout revokes the session. Unknown sessions are treated as already logged out.
func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := u.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Authenticate resolves the user behind a verified login cookie. The session must exist,
// belong to userID, and be neither revoked nor expired.
func (u *authUsecase) Authenticate(ctx context.Context, userID uint, sessionID string) (*entity.User, error) {
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpiredAt(u.now()) {
		return nil, ErrSessionExpired
	}
	return u.users.FindByID(ctx, userID)
}

// newSessionID returns 32 random bytes as 64 hex characters.
func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
