package usecase

import (
	"context"

	"myblog/internal/feature/auth/domain/entity"
)

// SessionRepository abstracts where login sessions live (Redis or the relational store).
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID returns ErrSessionNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// FindByUserID returns the user's live sessions.
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error)

	// Revoke marks a session as logged out.
	Revoke(ctx context.Context, id string) error

	// DeleteExpired removes expired sessions and reports how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountByUserID returns the number of live sessions for a user.
	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID removes the user's oldest session.
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}
