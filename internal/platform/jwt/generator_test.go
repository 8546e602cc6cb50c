package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_SessionRoundTrip(t *testing.T) {
	s := NewSigner("test-secret")

	tok, err := s.SignSession(42, "abc123", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := s.ParseSession(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.SessionID)

	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
}

func TestSigner_ParseSession_Rejects(t *testing.T) {
	s := NewSigner("test-secret")
	other := NewSigner("other-secret")

	expired, err := s.SignSession(1, "sid", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	forged, err := other.SignSession(1, "sid", time.Now().Add(time.Hour))
	require.NoError(t, err)

	noSID, err := s.Sign(&SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	require.NoError(t, err)

	badSubject, err := s.Sign(&SessionClaims{SessionID: "sid", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{SessionID: "sid",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":     expired,
		"wrong key":   forged,
		"missing sid": noSID,
		"bad subject": badSubject,
		"alg none":    unsigned,
		"garbage":     "not-a-token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.ParseSession(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
