// Package usecase implements registration, login and session handling for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by id, username or email.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists is returned when a unique username or email is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for an unknown username or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = errors.New("session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = errors.New("session has expired")
)
