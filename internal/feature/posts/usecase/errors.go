// Package usecase implements listing, writing, editing and deleting blog posts.
package usecase

import (
	"errors"

	"myblog/internal/shared/pagination"
)

var (
	// ErrPostNotFound is returned when no post has the requested id.
	ErrPostNotFound = errors.New("post not found")

	// ErrAuthorNotFound is returned when a listing is requested for an unknown username.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrForbidden is returned when the requester is not the author of the post.
	ErrForbidden = errors.New("not the author of this post")

	// ErrPageOutOfRange is returned for a page past the last one.
	ErrPageOutOfRange = pagination.ErrPageOutOfRange
)
