package web

import (
	"net/http"

	"myblog/internal/platform/flash"
	"myblog/internal/shared/form"

	"github.com/gin-gonic/gin"
)

// Context keys filled by middleware and read when rendering.
const (
	CurrentUserKey = "currentUser"
	CSRFTokenKey   = "csrfToken"
)

var errorMessages = map[int]string{
	http.StatusBadRequest:            "The form could not be verified. Please reload the page and try again.",
	http.StatusForbidden:             "You don't have permission to do that.",
	http.StatusNotFound:              "That page does not exist.",
	http.StatusRequestEntityTooLarge: "The upload is too large.",
	http.StatusTooManyRequests:       "Too many requests. Please wait a moment and try again.",
	http.StatusInternalServerError:   "Something went wrong on our side. Please try again later.",
}

// HTML renders page name with data plus the values every page needs: the current user,
// the CSRF token, pending flash messages and an Errors map.
func HTML(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if u, ok := c.Get(CurrentUserKey); ok && u != nil {
		data["CurrentUser"] = u
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = form.Errors{}
	}
	data["CSRFToken"] = c.GetString(CSRFTokenKey)
	data["Flashes"] = flash.Pop(c)
	c.HTML(status, name, data)
}

// Error renders the error page for status and aborts the chain.
func Error(c *gin.Context, status int) {
	msg, ok := errorMessages[status]
	if !ok {
		msg = http.StatusText(status)
	}
	HTML(c, status, "error", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": msg,
	})
	c.Abort()
}
