// Package adapters provides gorm repositories for the auth feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"myblog/internal/feature/auth/domain/entity"
	"myblog/internal/feature/auth/usecase"
)

// userGorm stores users through gorm. The DB must be opened with TranslateError so unique
// violations surface as gorm.ErrDuplicatedKey.
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a user repository.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts u and fills its ID and timestamps.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// Update saves the editable profile columns of u.
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	result := r.db.WithContext(ctx).Model(u).Updates(map[string]any{
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"username":    u.Username,
		"email":       u.Email,
		"profile_pic": u.ProfilePic,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return usecase.ErrUserAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userGorm) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
