// Package usecase implements profile editing for the logged-in user.
package usecase

import "errors"

var (
	// ErrUnsupportedImage is returned when an upload cannot be decoded as an accepted picture.
	ErrUnsupportedImage = errors.New("unsupported image")

	// ErrImageRejected is returned when moderation refuses an upload.
	ErrImageRejected = errors.New("image rejected by moderation")
)
