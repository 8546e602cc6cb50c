package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authentity "myblog/internal/feature/auth/domain/entity"
	authusecase "myblog/internal/feature/auth/usecase"
	"myblog/internal/feature/posts/domain/entity"
	"myblog/internal/shared/form"
	"myblog/internal/shared/pagination"

	"github.com/microcosm-cc/bluemonday"
)

// PerPage is the number of posts on one listing page.
const PerPage = 5

// PostRepository abstracts the persistence of posts. Listings are newest first and carry
// the author.
type PostRepository interface {
	List(ctx context.Context, offset, limit int) ([]entity.Post, int64, error)
	ListByAuthor(ctx context.Context, userID uint, offset, limit int) ([]entity.Post, int64, error)

	// FindByID returns ErrPostNotFound when the id is unknown.
	FindByID(ctx context.Context, id uint) (*entity.Post, error)
	Create(ctx context.Context, post *entity.Post) error

	// Update saves title and content. It returns ErrPostNotFound when the row is gone.
	Update(ctx context.Context, post *entity.Post) error

	// Delete returns ErrPostNotFound when the row is gone.
	Delete(ctx context.Context, id uint) error
}

// AuthorLookup resolves a username for per-author listings.
type AuthorLookup interface {
	FindByUsername(ctx context.Context, username string) (*authentity.User, error)
}

// Sanitizer cleans user-supplied HTML. *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(s string) string
}

// PostInput is a validated post form.
type PostInput struct {
	Title   string
	Content string
}

// CanModify reports whether requester may update or delete post.
func CanModify(requester *authentity.User, post *entity.Post) bool {
	return requester != nil && post != nil && post.IsAuthoredBy(requester.ID)
}

type postUsecase struct {
	posts     PostRepository
	authors   AuthorLookup
	sanitizer Sanitizer
	now       func() time.Time
}

// NewPostUsecase creates the posts usecase. A nil sanitizer falls back to bluemonday's
// UGC policy.
func NewPostUsecase(posts PostRepository, authors AuthorLookup, sanitizer Sanitizer) *postUsecase {
	if sanitizer == nil {
		sanitizer = bluemonday.UGCPolicy()
	}
	return &postUsecase{
		posts:     posts,
		authors:   authors,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// List returns one page of all posts, newest first.
func (u *postUsecase) List(ctx context.Context, page int) (pagination.Page[entity.Post], error) {
	items, total, err := u.posts.List(ctx, pagination.Offset(page, PerPage), PerPage)
	if err != nil {
		return pagination.Page[entity.Post]{}, fmt.Errorf("list posts: %w", err)
	}
	if err := pagination.Check(page, PerPage, total); err != nil {
		return pagination.Page[entity.Post]{}, err
	}
	return pagination.Page[entity.Post]{Items: items, Number: page, PerPage: PerPage, Total: total}, nil
}

// ListByAuthor returns the author and one page of their posts.
func (u *postUsecase) ListByAuthor(ctx context.Context, username string, page int) (*authentity.User, pagination.Page[entity.Post], error) {
	var empty pagination.Page[entity.Post]

	author, err := u.authors.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, authusecase.ErrUserNotFound) {
			return nil, empty, ErrAuthorNotFound
		}
		return nil, empty, fmt.Errorf("find author: %w", err)
	}

	items, total, err := u.posts.ListByAuthor(ctx, author.ID, pagination.Offset(page, PerPage), PerPage)
	if err != nil {
		return nil, empty, fmt.Errorf("list posts by %s: %w", username, err)
	}
	if err := pagination.Check(page, PerPage, total); err != nil {
		return nil, empty, err
	}
	return author, pagination.Page[entity.Post]{Items: items, Number: page, PerPage: PerPage, Total: total}, nil
}

// Create stores a new post written by author.
func (u *postUsecase) Create(ctx context.Context, author *authentity.User, in PostInput) (*entity.Post, error) {
	title, content, err := u.clean(in)
	if err != nil {
		return nil, err
	}

	post := &entity.Post{
		Title:      title,
		Content:    content,
		DatePosted: u.now().UTC(),
		UserID:     author.ID,
	}
	if err := u.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Author = *author
	return post, nil
}

// GetForEdit loads a post the requester is allowed to change.
func (u *postUsecase) GetForEdit(ctx context.Context, requester *authentity.User, id uint) (*entity.Post, error) {
	post, err := u.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModify(requester, post) {
		return nil, ErrForbidden
	}
	return post, nil
}

// Update replaces title and content of a post owned by requester.
func (u *postUsecase) Update(ctx context.Context, requester *authentity.User, id uint, in PostInput) (*entity.Post, error) {
	post, err := u.GetForEdit(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	title, content, err := u.clean(in)
	if err != nil {
		return nil, err
	}
	post.Title = title
	post.Content = content

	if err := u.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	return post, nil
}

// Delete removes a post owned by requester.
func (u *postUsecase) Delete(ctx context.Context, requester *authentity.User, id uint) error {
	if _, err := u.GetForEdit(ctx, requester, id); err != nil {
		return err
	}
	if err := u.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

// clean trims the title and sanitizes the content. Content that sanitizes to nothing counts
// as missing.
func (u *postUsecase) clean(in PostInput) (string, string, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(u.sanitizer.Sanitize(in.Content))

	errs := form.Errors{}
	if title == "" {
		errs.Add("title", "This field is required.")
	}
	if content == "" {
		errs.Add("content", "This field is required.")
	}
	if errs.Any() {
		return "", "", &form.ValidationError{Errors: errs}
	}
	return title, content, nil
}
