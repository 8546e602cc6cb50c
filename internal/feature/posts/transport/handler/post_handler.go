// Package handler provides the HTTP handlers for listing and editing posts.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	authentity "myblog/internal/feature/auth/domain/entity"
	"myblog/internal/feature/auth/transport/middleware"
	"myblog/internal/feature/posts/domain/entity"
	"myblog/internal/feature/posts/usecase"
	"myblog/internal/platform/flash"
	"myblog/internal/platform/web"
	"myblog/internal/shared/form"
	"myblog/internal/shared/pagination"

	"github.com/gin-gonic/gin"
)

const (
	msgCreated = "Your post has been created!"
	msgUpdated = "Your post has been updated!"
	msgDeleted = "Your post has been deleted!"
)

// PostUsecase defines the post operations the handler needs.
type PostUsecase interface {
	List(ctx context.Context, page int) (pagination.Page[entity.Post], error)
	ListByAuthor(ctx context.Context, username string, page int) (*authentity.User, pagination.Page[entity.Post], error)
	Create(ctx context.Context, author *authentity.User, in usecase.PostInput) (*entity.Post, error)
	GetForEdit(ctx context.Context, requester *authentity.User, id uint) (*entity.Post, error)
	Update(ctx context.Context, requester *authentity.User, id uint, in usecase.PostInput) (*entity.Post, error)
	Delete(ctx context.Context, requester *authentity.User, id uint) error
}

// Metrics records post activity.
type Metrics interface {
	PostCreated()
}

// PostHandler serves the home page, author listings and the post forms.
type PostHandler struct {
	posts   PostUsecase
	metrics Metrics
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts PostUsecase, m Metrics) *PostHandler {
	return &PostHandler{posts: posts, metrics: m}
}

// Home lists all posts, newest first.
func (h *PostHandler) Home(c *gin.Context) {
	page, err := h.posts.List(c.Request.Context(), pagination.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.HTML(c, http.StatusOK, "home", gin.H{"Title": "Home", "Posts": page})
}

// UserPosts lists the posts of one author.
func (h *PostHandler) UserPosts(c *gin.Context) {
	username := c.Param("username")
	author, page, err := h.posts.ListByAuthor(c.Request.Context(), username, pagination.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.HTML(c, http.StatusOK, "user_posts", gin.H{"Title": author.Username, "User": author, "Posts": page})
}

// NewPostPage shows an empty post form.
func (h *PostHandler) NewPostPage(c *gin.Context) {
	renderNew(c, &form.PostForm{}, nil)
}

// NewPost publishes a post as the current user.
func (h *PostHandler) NewPost(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var f form.PostForm
	if !bindPost(c, &f) {
		return
	}
	if errs := form.Validate(&f); errs.Any() {
		renderNew(c, &f, errs)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), user, usecase.PostInput{Title: f.Title, Content: f.Content})
	if err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			renderNew(c, &f, ve.Errors)
			return
		}
		h.fail(c, err)
		return
	}

	h.metrics.PostCreated()
	slog.Info("post created", "post_id", post.ID, "user_id", user.ID)
	flash.Add(c, flash.Success, msgCreated)
	c.Redirect(http.StatusFound, "/home")
}

// UpdatePostPage shows the post form filled with the current title and content.
func (h *PostHandler) UpdatePostPage(c *gin.Context) {
	post, ok := h.loadForEdit(c)
	if !ok {
		return
	}
	renderUpdate(c, post.ID, &form.PostForm{Title: post.Title, Content: post.Content}, nil)
}

// UpdatePost saves a new title and content.
func (h *PostHandler) UpdatePost(c *gin.Context) {
	post, ok := h.loadForEdit(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	var f form.PostForm
	if !bindPost(c, &f) {
		return
	}
	if errs := form.Validate(&f); errs.Any() {
		renderUpdate(c, post.ID, &f, errs)
		return
	}

	if _, err := h.posts.Update(c.Request.Context(), user, post.ID, usecase.PostInput{Title: f.Title, Content: f.Content}); err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			renderUpdate(c, post.ID, &f, ve.Errors)
			return
		}
		h.fail(c, err)
		return
	}

	slog.Info("post updated", "post_id", post.ID, "user_id", user.ID)
	flash.Add(c, flash.Success, msgUpdated)
	c.Redirect(http.StatusFound, "/home")
}

// DeletePostPage asks for confirmation.
func (h *PostHandler) DeletePostPage(c *gin.Context) {
	post, ok := h.loadForEdit(c)
	if !ok {
		return
	}
	web.HTML(c, http.StatusOK, "delete_post", gin.H{"Title": "Delete Post", "Post": post})
}

// DeletePost removes the post.
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)

	if err := h.posts.Delete(c.Request.Context(), user, id); err != nil {
		h.fail(c, err)
		return
	}

	slog.Info("post deleted", "post_id", id, "user_id", user.ID)
	flash.Add(c, flash.Success, msgDeleted)
	c.Redirect(http.StatusFound, "/home")
}

func (h *PostHandler) loadForEdit(c *gin.Context) (*entity.Post, bool) {
	id, ok := postID(c)
	if !ok {
		return nil, false
	}
	user, _ := middleware.CurrentUser(c)

	post, err := h.posts.GetForEdit(c.Request.Context(), user, id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return post, true
}

// fail maps usecase errors to error pages.
func (h *PostHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrPostNotFound),
		errors.Is(err, usecase.ErrAuthorNotFound),
		errors.Is(err, usecase.ErrPageOutOfRange):
		web.Error(c, http.StatusNotFound)
	case errors.Is(err, usecase.ErrForbidden):
		slog.Warn("post modification refused", "path", c.Request.URL.Path, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusForbidden)
	default:
		slog.Error("post request failed", "error", err, "path", c.Request.URL.Path)
		web.Error(c, http.StatusInternalServerError)
	}
}

func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	if err != nil || id == 0 {
		web.Error(c, http.StatusNotFound)
		return 0, false
	}
	return uint(id), true
}

func bindPost(c *gin.Context, f *form.PostForm) bool {
	if err := c.ShouldBind(f); err != nil {
		slog.Warn("post bind failed", "error", err, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusBadRequest)
		return false
	}
	return true
}

func renderNew(c *gin.Context, f *form.PostForm, errs form.Errors) {
	web.HTML(c, http.StatusOK, "post_form", gin.H{
		"Title":  "New Post",
		"Legend": "Create New Post",
		"Action": "/post/new",
		"Form":   f,
		"Errors": errs,
	})
}

func renderUpdate(c *gin.Context, id uint, f *form.PostForm, errs form.Errors) {
	web.HTML(c, http.StatusOK, "post_form", gin.H{
		"Title":  "Update Post",
		"Legend": "Update Post",
		"Action": fmt.Sprintf("/post/%d/update", id),
		"Form":   f,
		"Errors": errs,
	})
}
