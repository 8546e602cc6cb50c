// Package handler provides the HTTP handlers for viewing and editing the own profile.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"myblog/internal/feature/auth/domain/entity"
	"myblog/internal/feature/auth/transport/middleware"
	"myblog/internal/feature/profile/usecase"
	"myblog/internal/platform/flash"
	"myblog/internal/platform/web"
	"myblog/internal/shared/form"

	"github.com/gin-gonic/gin"
)

// PictureField is the multipart field carrying the profile picture.
const PictureField = "user_img"

const (
	msgUpdated           = "Your account has been updated!"
	msgUnreadablePicture = "The file could not be read as an image."
	msgRejectedPicture   = "This picture cannot be used. Please choose a different one."
)

// ProfileUsecase defines the profile operations the handler needs.
type ProfileUsecase interface {
	UpdateProfile(ctx context.Context, current *entity.User, in usecase.UpdateInput) (*entity.User, error)
}

// ProfileHandler serves /myprofile and /editprofile. Both routes require a login.
type ProfileHandler struct {
	profiles ProfileUsecase
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// MyProfile shows the current user's profile.
func (h *ProfileHandler) MyProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	web.HTML(c, http.StatusOK, "profile", gin.H{
		"Title":     "My Profile",
		"UserImage": web.ProfilePicURL(user.ProfilePic),
	})
}

// EditProfilePage shows the profile form filled with the current values.
func (h *ProfileHandler) EditProfilePage(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	renderEdit(c, &form.EditProfileForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Email:     user.Email,
	}, nil)
}

// EditProfile saves the profile form and an optional new picture.
func (h *ProfileHandler) EditProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var f form.EditProfileForm
	if err := c.ShouldBind(&f); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			web.Error(c, http.StatusRequestEntityTooLarge)
			return
		}
		slog.Warn("profile bind failed", "error", err, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusBadRequest)
		return
	}
	errs := form.Validate(&f)

	in := usecase.UpdateInput{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Username:  f.Username,
		Email:     f.Email,
	}

	fh, err := c.FormFile(PictureField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no new picture
	case err != nil:
		slog.Warn("profile picture unreadable", "error", err, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusBadRequest)
		return
	default:
		if msg, ok := form.FileAllowed(fh.Filename, form.ProfilePictureExtensions...); !ok {
			errs.Add(PictureField, msg)
		}
	}

	if errs.Any() {
		renderEdit(c, &f, errs)
		return
	}

	if fh != nil {
		file, err := fh.Open()
		if err != nil {
			slog.Error("failed to open profile picture", "error", err)
			web.Error(c, http.StatusInternalServerError)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				slog.Warn("failed to close profile picture", "error", err)
			}
		}()
		in.Picture = &usecase.Upload{Filename: fh.Filename, Content: file}
	}

	updated, err := h.profiles.UpdateProfile(c.Request.Context(), user, in)
	if err != nil {
		var ve *form.ValidationError
		switch {
		case errors.As(err, &ve):
			renderEdit(c, &f, ve.Errors)
		case errors.Is(err, usecase.ErrUnsupportedImage):
			renderEdit(c, &f, form.Errors{PictureField: {msgUnreadablePicture}})
		case errors.Is(err, usecase.ErrImageRejected):
			slog.Warn("profile picture rejected", "user_id", user.ID, "remote_addr", c.ClientIP())
			renderEdit(c, &f, form.Errors{PictureField: {msgRejectedPicture}})
		default:
			slog.Error("profile update failed", "error", err, "user_id", user.ID)
			web.Error(c, http.StatusInternalServerError)
		}
		return
	}

	c.Set(web.CurrentUserKey, updated)
	slog.Info("profile updated", "user_id", updated.ID, "picture_changed", in.Picture != nil)
	flash.Add(c, flash.Success, msgUpdated)
	c.Redirect(http.StatusFound, "/myprofile")
}

func renderEdit(c *gin.Context, f *form.EditProfileForm, errs form.Errors) {
	web.HTML(c, http.StatusOK, "editprofile", gin.H{"Title": "Edit Profile", "Form": f, "Errors": errs})
}
