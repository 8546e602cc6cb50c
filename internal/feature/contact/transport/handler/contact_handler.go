// Package handler provides the HTTP handlers for the contact form.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"myblog/internal/feature/contact/usecase"
	"myblog/internal/platform/flash"
	"myblog/internal/platform/metrics"
	"myblog/internal/platform/web"
	"myblog/internal/shared/form"

	"github.com/gin-gonic/gin"
)

const msgSent = "Your message has been sent!"

// ContactUsecase sends contact messages.
type ContactUsecase interface {
	Send(ctx context.Context, in usecase.ContactInput) error
}

// Metrics records contact outcomes.
type Metrics interface {
	ContactMessage(result string)
}

// ContactHandler serves /contactus.
type ContactHandler struct {
	contact ContactUsecase
	metrics Metrics
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(contact ContactUsecase, m Metrics) *ContactHandler {
	return &ContactHandler{contact: contact, metrics: m}
}

// ContactPage shows an empty contact form.
func (h *ContactHandler) ContactPage(c *gin.Context) {
	renderContact(c, &form.ContactForm{}, nil)
}

// Contact validates the form and mails it to the site owner.
func (h *ContactHandler) Contact(c *gin.Context) {
	var f form.ContactForm
	if err := c.ShouldBind(&f); err != nil {
		slog.Warn("contact bind failed", "error", err, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusBadRequest)
		return
	}
	if errs := form.Validate(&f); errs.Any() {
		h.metrics.ContactMessage(metrics.ResultInvalid)
		renderContact(c, &f, errs)
		return
	}

	err := h.contact.Send(c.Request.Context(), usecase.ContactInput{
		FromEmail: f.FromEmail,
		Subject:   f.Subject,
		Message:   f.Message,
	})
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrInvalidSender):
		h.metrics.ContactMessage(metrics.ResultInvalid)
		renderContact(c, &f, form.Errors{"from_email": {"Invalid email address."}})
		return
	case errors.Is(err, usecase.ErrInvalidSubject):
		h.metrics.ContactMessage(metrics.ResultInvalid)
		renderContact(c, &f, form.Errors{"subject": {"Invalid subject."}})
		return
	default:
		h.metrics.ContactMessage(metrics.ResultFailure)
		slog.Error("contact message failed", "error", err, "remote_addr", c.ClientIP())
		web.Error(c, http.StatusInternalServerError)
		return
	}

	h.metrics.ContactMessage(metrics.ResultSuccess)
	flash.Add(c, flash.Success, msgSent)
	c.Redirect(http.StatusFound, "/")
}

func renderContact(c *gin.Context, f *form.ContactForm, errs form.Errors) {
	web.HTML(c, http.StatusOK, "contactus", gin.H{"Title": "Contact Us", "Form": f, "Errors": errs})
}
