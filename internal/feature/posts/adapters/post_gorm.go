// Package adapters provides the gorm repository for posts.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"myblog/internal/feature/posts/domain/entity"
	"myblog/internal/feature/posts/usecase"
)

const newestFirst = "date_posted DESC, id DESC"

type postGorm struct {
	db *gorm.DB
}

var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostGorm creates a post repository.
func NewPostGorm(db *gorm.DB) *postGorm {
	return &postGorm{db: db}
}

func (r *postGorm) List(ctx context.Context, offset, limit int) ([]entity.Post, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&entity.Post{}), offset, limit)
}

func (r *postGorm) ListByAuthor(ctx context.Context, userID uint, offset, limit int) ([]entity.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Post{}).Where("user_id = ?", userID)
	return r.page(ctx, q, offset, limit)
}

func (r *postGorm) page(ctx context.Context, q *gorm.DB, offset, limit int) ([]entity.Post, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []entity.Post
	err := q.Session(&gorm.Session{}).
		Preload("Author").
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postGorm) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	var p entity.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts p without touching its Author row.
func (r *postGorm) Create(ctx context.Context, p *entity.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *postGorm) Update(ctx context.Context, p *entity.Post) error {
	result := r.db.WithContext(ctx).Model(&entity.Post{}).Where("id = ?", p.ID).Updates(map[string]any{
		"title":   p.Title,
		"content": p.Content,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}

func (r *postGorm) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrPostNotFound
	}
	return nil
}
