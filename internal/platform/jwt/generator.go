package jwtmw

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, algorithm, or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims are carried by the login cookie.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// UserID decodes the subject claim.
func (c *SessionClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, c.Subject)
	}
	return uint(id), nil
}

// Signer issues and verifies HS256 tokens.
type Signer interface {
	// SignSession creates the login token for a stored session.
	SignSession(userID uint, sessionID string, expiresAt time.Time) (string, error)
	// ParseSession verifies a login token and returns its claims.
	ParseSession(token string) (*SessionClaims, error)
	// Sign signs arbitrary claims.
	Sign(claims jwt.Claims) (string, error)
	// Parse verifies token and decodes it into claims.
	Parse(token string, claims jwt.Claims) error
}

type signer struct {
	secret []byte
	now    func() time.Time
}

var _ Signer = (*signer)(nil)

// NewSigner creates a signer keyed by secret.
func NewSigner(secret string) Signer {
	return &signer{secret: []byte(secret), now: time.Now}
}

func (s *signer) SignSession(userID uint, sessionID string, expiresAt time.Time) (string, error) {
	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return s.Sign(claims)
}

func (s *signer) ParseSession(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.Parse(token, claims); err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing sid", ErrInvalidToken)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *signer) Sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *signer) Parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// only HMAC is accepted
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
