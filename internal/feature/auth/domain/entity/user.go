// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// DefaultProfilePic is the picture every account starts with. It is shipped with the static
// assets and never deleted.
const DefaultProfilePic = "default.jpg"

// User is a registered blog author.
type User struct {
	ID uint `gorm:"primaryKey"`

	FirstName string `gorm:"size:50;not null"`
	LastName  string `gorm:"size:50;not null"`

	// Username and Email are unique across all users.
	Username string `gorm:"uniqueIndex;size:20;not null"`
	Email    string `gorm:"uniqueIndex;size:120;not null"`

	// Password holds the bcrypt hash, never the plaintext.
	Password string `gorm:"size:60;not null"`

	// ProfilePic is a file name under static/profile_pics.
	ProfilePic string `gorm:"size:40;not null;default:default.jpg"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasDefaultPicture reports whether the user still uses the shared default image.
func (u *User) HasDefaultPicture() bool {
	return u.ProfilePic == "" || u.ProfilePic == DefaultProfilePic
}
