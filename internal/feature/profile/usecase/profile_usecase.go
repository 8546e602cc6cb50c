package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"myblog/internal/feature/auth/domain/entity"
	authusecase "myblog/internal/feature/auth/usecase"
)

// UserRepository is the persistence the profile editor needs.
type UserRepository interface {
	authusecase.UserLookup

	// Update returns authusecase.ErrUserAlreadyExists on a unique violation.
	Update(ctx context.Context, user *entity.User) error
}

// AvatarStore keeps processed profile pictures.
type AvatarStore interface {
	// Save processes the upload and returns the stored file name.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Remove(name string) error
}

// ImageModerator inspects raw upload bytes. It returns ErrImageRejected for unacceptable
// content.
type ImageModerator interface {
	Check(ctx context.Context, data []byte) error
}

// Upload is a picture submitted with the profile form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// UpdateInput is a validated profile form.
type UpdateInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Picture   *Upload
}

type profileUsecase struct {
	users     UserRepository
	avatars   AvatarStore
	moderator ImageModerator
}

// NewProfileUsecase creates the profile usecase. moderator may be nil.
func NewProfileUsecase(users UserRepository, avatars AvatarStore, moderator ImageModerator) *profileUsecase {
	return &profileUsecase{users: users, avatars: avatars, moderator: moderator}
}

// UpdateProfile saves the edited fields of current and, when a picture is given, replaces the
// profile picture. The new picture is written before the row is updated and removed again if
// the update fails. It returns the updated copy of the user.
func (u *profileUsecase) UpdateProfile(ctx context.Context, current *entity.User, in UpdateInput) (*entity.User, error) {
	if err := authusecase.CheckIdentityAvailable(ctx, u.users, in.Username, in.Email, current); err != nil {
		return nil, err
	}

	updated := *current
	updated.FirstName = in.FirstName
	updated.LastName = in.LastName
	updated.Username = in.Username
	updated.Email = in.Email

	var newPic string
	if in.Picture != nil {
		name, err := u.storePicture(ctx, in.Picture)
		if err != nil {
			return nil, err
		}
		newPic = name
		updated.ProfilePic = name
	}

	if err := u.users.Update(ctx, &updated); err != nil {
		if newPic != "" {
			u.remove(newPic)
		}
		if errors.Is(err, authusecase.ErrUserAlreadyExists) {
			// Lost a race with another account; report which field collided.
			if verr := authusecase.CheckIdentityAvailable(ctx, u.users, in.Username, in.Email, current); verr != nil {
				return nil, verr
			}
		}
		return nil, fmt.Errorf("update user %d: %w", current.ID, err)
	}

	if newPic != "" && !current.HasDefaultPicture() && current.ProfilePic != newPic {
		u.remove(current.ProfilePic)
	}
	return &updated, nil
}

func (u *profileUsecase) storePicture(ctx context.Context, p *Upload) (string, error) {
	data, err := io.ReadAll(p.Content)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrUnsupportedImage
	}

	if u.moderator != nil {
		if err := u.moderator.Check(ctx, data); err != nil {
			return "", err
		}
	}

	name, err := u.avatars.Save(ctx, p.Filename, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("save picture: %w", err)
	}
	return name, nil
}

func (u *profileUsecase) remove(name string) {
	if err := u.avatars.Remove(name); err != nil {
		slog.Warn("failed to remove profile picture", "file", name, "error", err)
	}
}
