package usecase

import (
	"context"
	"errors"
	"fmt"

	"myblog/internal/feature/auth/domain/entity"
	"myblog/internal/shared/form"
)

const (
	msgUsernameTaken = "That username is taken. Please choose a different one."
	msgEmailTaken    = "That email is taken. Please choose a different one."
)

// UserLookup is the read side needed for uniqueness checks.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// CheckIdentityAvailable verifies that username and email are not used by another account.
// When current is set, its own unchanged values are allowed. Collisions are returned as
// *form.ValidationError keyed by the form input names.
func CheckIdentityAvailable(ctx context.Context, lookup UserLookup, username, email string, current *entity.User) error {
	errs := form.Errors{}

	if current == nil || username != current.Username {
		taken, err := exists(func() (*entity.User, error) { return lookup.FindByUsername(ctx, username) })
		if err != nil {
			return fmt.Errorf("lookup username: %w", err)
		}
		if taken {
			errs.Add("username", msgUsernameTaken)
		}
	}

	if current == nil || email != current.Email {
		taken, err := exists(func() (*entity.User, error) { return lookup.FindByEmail(ctx, email) })
		if err != nil {
			return fmt.Errorf("lookup email: %w", err)
		}
		if taken {
			errs.Add("email", msgEmailTaken)
		}
	}

	if errs.Any() {
		return &form.ValidationError{Errors: errs}
	}
	return nil
}

func exists(find func() (*entity.User, error)) (bool, error) {
	_, err := find()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}
