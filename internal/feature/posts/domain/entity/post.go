// Package entity defines the domain entities for the posts feature.
package entity

import (
	"time"

	authentity "myblog/internal/feature/auth/domain/entity"

	"gorm.io/gorm"
)

// Post is a blog entry written by one user.
type Post struct {
	ID      uint   `gorm:"primaryKey"`
	Title   string `gorm:"size:100;not null"`
	Content string `gorm:"type:text;not null"`

	// DatePosted is set to the insertion time (UTC) when left zero.
	DatePosted time.Time `gorm:"index;not null"`

	UserID uint            `gorm:"index;not null"`
	Author authentity.User `gorm:"foreignKey:UserID"`
}

// BeforeCreate fills a zero DatePosted with the current UTC time.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.DatePosted.IsZero() {
		p.DatePosted = time.Now().UTC()
	}
	return nil
}

// IsAuthoredBy reports whether userID wrote the post.
func (p *Post) IsAuthoredBy(userID uint) bool {
	return userID != 0 && p.UserID == userID
}
